package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/decker502/wavespawn/pkg/embedded"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultWaveSpawnConfigPath 内嵌的波次生成配置路径
	DefaultWaveSpawnConfigPath = "data/wave_spawn.yaml"

	// DefaultMinSpawnDelayMs 生成间隔下限（毫秒），配置未指定时使用
	DefaultMinSpawnDelayMs = 250.0
)

// WaveSpawnFile 波次生成配置文件结构
type WaveSpawnFile struct {
	// MinSpawnDelayMs 生成间隔下限（毫秒），0 表示使用 DefaultMinSpawnDelayMs
	MinSpawnDelayMs float64 `yaml:"minSpawnDelayMs"`

	// FallbackToHighest 超出最后一个配置区间的波次是否沿用最高区间配置
	// 未配置时默认为 true
	FallbackToHighest *bool `yaml:"fallbackToHighest"`

	Waves []WaveSpawnConfig `yaml:"waves"`
}

// WaveSpawnConfig 单个波次区间的生成配置
//
// 区间为 [FromWave, ToWave]，ToWave 为 0 表示无上限（只能出现在最后一个区间）
type WaveSpawnConfig struct {
	FromWave int `yaml:"fromWave"`
	ToWave   int `yaml:"toWave"`

	BaseSpawnRateMs         float64 `yaml:"baseSpawnRate"`         // 基础生成间隔（毫秒）
	SpawnRateAccelerationMs float64 `yaml:"spawnRateAcceleration"` // 每生成一个敌人间隔缩短的毫秒数
	MaxEnemiesPerWave       int     `yaml:"maxEnemiesPerWave"`

	EnemyComposition    []EnemyCompositionEntry `yaml:"enemyComposition"`
	BossConfig          *BossSpawnConfig        `yaml:"bossConfig"`
	DifficultyModifiers DifficultyModifiers     `yaml:"difficultyModifiers"`
}

// EnemyCompositionEntry 波次中一种可生成的敌人
type EnemyCompositionEntry struct {
	Type          string  `yaml:"type"`
	Weight        float64 `yaml:"weight"`        // 相对概率权重
	MinWave       int     `yaml:"minWave"`       // 最早出现波次
	MaxConcurrent int     `yaml:"maxConcurrent"` // 场上同类型上限，<= 0 表示不限
}

// BossSpawnConfig Boss 生成规则
type BossSpawnConfig struct {
	SpawnChance      float64  `yaml:"spawnChance"` // 每次调度判定的出现概率 [0,1]
	MinWave          int      `yaml:"minWave"`     // 最早出现波次
	BossTypes        []string `yaml:"bossTypes"`
	HealthMultiplier float64  `yaml:"healthMultiplier"`
	SpeedMultiplier  float64  `yaml:"speedMultiplier"`
	GoldMultiplier   float64  `yaml:"goldMultiplier"`
}

// DifficultyModifiers 静态缩放参数，与动态难度系数相乘
type DifficultyModifiers struct {
	// PerformanceThreshold 表现分达到该值时额外应用 AdaptiveSpawnModifier，0 表示禁用
	PerformanceThreshold  float64 `yaml:"performanceThreshold"`
	AdaptiveSpawnModifier float64 `yaml:"adaptiveSpawnModifier"`
	HealthScalingFactor   float64 `yaml:"healthScalingFactor"` // 每波血量倍率（指数底数）
	SpeedScalingFactor    float64 `yaml:"speedScalingFactor"`  // 每波速度倍率（指数底数）
}

// Covers 判断该配置区间是否覆盖指定波次
func (c *WaveSpawnConfig) Covers(wave int) bool {
	if wave < c.FromWave {
		return false
	}
	return c.ToWave == 0 || wave <= c.ToWave
}

// HasBoss 是否配置了可用的 Boss 规则
func (c *WaveSpawnConfig) HasBoss() bool {
	return c.BossConfig != nil && len(c.BossConfig.BossTypes) > 0
}

// EnemyTypes 配置中引用的全部敌人类型（普通和 Boss），去重并排序
func (f *WaveSpawnFile) EnemyTypes() []string {
	seen := make(map[string]bool)
	for _, wave := range f.Waves {
		for _, entry := range wave.EnemyComposition {
			seen[entry.Type] = true
		}
		if wave.BossConfig != nil {
			for _, bossType := range wave.BossConfig.BossTypes {
				seen[bossType] = true
			}
		}
	}

	types := make([]string, 0, len(seen))
	for enemyType := range seen {
		types = append(types, enemyType)
	}
	sort.Strings(types)
	return types
}

// LoadWaveSpawnConfig 从磁盘 YAML 文件加载波次生成配置
func LoadWaveSpawnConfig(filePath string) (*WaveSpawnFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wave spawn file %s: %w", filePath, err)
	}
	return ParseWaveSpawnConfig(data)
}

// LoadEmbeddedWaveSpawnConfig 从内嵌资源加载波次生成配置
// 需要先调用 embedded.Init()
func LoadEmbeddedWaveSpawnConfig(path string) (*WaveSpawnFile, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wave spawn file %s: %w", path, err)
	}
	return ParseWaveSpawnConfig(data)
}

// ParseWaveSpawnConfig 解析 YAML、填充默认值并验证
func ParseWaveSpawnConfig(data []byte) (*WaveSpawnFile, error) {
	var file WaveSpawnFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse wave spawn YAML: %w", err)
	}

	applyWaveSpawnDefaults(&file)

	if err := validateWaveSpawnConfig(&file); err != nil {
		return nil, fmt.Errorf("invalid wave spawn config: %w", err)
	}

	return &file, nil
}

// applyWaveSpawnDefaults 将未配置（零值）的倍率参数填充为 1
func applyWaveSpawnDefaults(file *WaveSpawnFile) {
	if file.MinSpawnDelayMs == 0 {
		file.MinSpawnDelayMs = DefaultMinSpawnDelayMs
	}
	if file.FallbackToHighest == nil {
		fallback := true
		file.FallbackToHighest = &fallback
	}

	for i := range file.Waves {
		mods := &file.Waves[i].DifficultyModifiers
		if mods.AdaptiveSpawnModifier == 0 {
			mods.AdaptiveSpawnModifier = 1
		}
		if mods.HealthScalingFactor == 0 {
			mods.HealthScalingFactor = 1
		}
		if mods.SpeedScalingFactor == 0 {
			mods.SpeedScalingFactor = 1
		}

		if boss := file.Waves[i].BossConfig; boss != nil {
			if boss.HealthMultiplier == 0 {
				boss.HealthMultiplier = 1
			}
			if boss.SpeedMultiplier == 0 {
				boss.SpeedMultiplier = 1
			}
			if boss.GoldMultiplier == 0 {
				boss.GoldMultiplier = 1
			}
		}
	}
}

// validateWaveSpawnConfig 验证配置的有效性
// 区间重叠在 NewWaveConfigRegistry 中检查
func validateWaveSpawnConfig(file *WaveSpawnFile) error {
	if len(file.Waves) == 0 {
		return fmt.Errorf("waves cannot be empty")
	}
	if file.MinSpawnDelayMs < 0 {
		return fmt.Errorf("minSpawnDelayMs cannot be negative, got %v", file.MinSpawnDelayMs)
	}

	for i, wave := range file.Waves {
		if err := validateWaveRange(&wave); err != nil {
			return fmt.Errorf("waves[%d]: %w", i, err)
		}
	}

	return nil
}

func validateWaveRange(c *WaveSpawnConfig) error {
	if c.FromWave < 1 {
		return fmt.Errorf("fromWave must be >= 1, got %d", c.FromWave)
	}
	if c.ToWave != 0 && c.ToWave < c.FromWave {
		return fmt.Errorf("toWave (%d) must be 0 or >= fromWave (%d)", c.ToWave, c.FromWave)
	}
	if c.BaseSpawnRateMs <= 0 {
		return fmt.Errorf("baseSpawnRate must be positive, got %v", c.BaseSpawnRateMs)
	}
	if c.SpawnRateAccelerationMs < 0 {
		return fmt.Errorf("spawnRateAcceleration cannot be negative, got %v", c.SpawnRateAccelerationMs)
	}
	if c.MaxEnemiesPerWave < 1 {
		return fmt.Errorf("maxEnemiesPerWave must be >= 1, got %d", c.MaxEnemiesPerWave)
	}

	// 敌人组成
	if len(c.EnemyComposition) == 0 {
		return fmt.Errorf("enemyComposition cannot be empty")
	}
	for _, entry := range c.EnemyComposition {
		if entry.Type == "" {
			return fmt.Errorf("enemy type cannot be empty")
		}
		if entry.Weight < 0 {
			return fmt.Errorf("enemy %s: weight cannot be negative, got %v", entry.Type, entry.Weight)
		}
		if entry.MinWave < 0 {
			return fmt.Errorf("enemy %s: minWave cannot be negative, got %d", entry.Type, entry.MinWave)
		}
	}

	// Boss 规则（可选）
	if boss := c.BossConfig; boss != nil {
		if boss.SpawnChance < 0 || boss.SpawnChance > 1 {
			return fmt.Errorf("bossConfig.spawnChance must be between 0 and 1, got %v", boss.SpawnChance)
		}
		if len(boss.BossTypes) == 0 {
			return fmt.Errorf("bossConfig.bossTypes cannot be empty")
		}
		if boss.HealthMultiplier < 0 || boss.SpeedMultiplier < 0 || boss.GoldMultiplier < 0 {
			return fmt.Errorf("bossConfig multipliers cannot be negative")
		}
	}

	mods := c.DifficultyModifiers
	if mods.PerformanceThreshold < 0 || mods.PerformanceThreshold > 1 {
		return fmt.Errorf("difficultyModifiers.performanceThreshold must be between 0 and 1, got %v", mods.PerformanceThreshold)
	}
	if mods.AdaptiveSpawnModifier < 0 {
		return fmt.Errorf("difficultyModifiers.adaptiveSpawnModifier cannot be negative, got %v", mods.AdaptiveSpawnModifier)
	}
	if mods.HealthScalingFactor < 0 || mods.SpeedScalingFactor < 0 {
		return fmt.Errorf("difficultyModifiers scaling factors cannot be negative")
	}

	return nil
}
