package systems

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/config"
	"github.com/decker502/wavespawn/pkg/utils"
)

// 缩放后属性的下限，保证缩放结果始终为正
const (
	MinScaledHealth = 1.0
	MinScaledStat   = 0.01
)

// SpawnStrategy 生成策略
//
// 只有自适应一种实现，接口用于在控制器测试中替换
type SpawnStrategy interface {
	// CalculateNextSpawnDelay 计算下一次生成的延迟（毫秒）
	CalculateNextSpawnDelay(wave, currentSpawnCount int) (float64, error)
	// SelectEnemyType 根据场上敌人选择下一个普通敌人类型
	SelectEnemyType(wave int, activeEnemies []components.Enemy) (string, error)
	// ShouldSpawnBoss 本次调度是否生成 Boss
	ShouldSpawnBoss(wave, currentSpawnCount int) bool
	// ApplyDifficultyScaling 返回缩放后的敌人副本
	ApplyDifficultyScaling(enemy components.Enemy, wave int) components.Enemy
}

// AdaptiveSpawnStrategy 自适应生成策略
//
// 生成节奏和敌人属性都受 DifficultySource 提供的动态难度系数调节：
// 玩家表现越好，系数越高，生成越密集、敌人越强。
type AdaptiveSpawnStrategy struct {
	registry   *config.WaveConfigRegistry
	difficulty DifficultySource
	rng        utils.RandomSource

	verbose bool
}

// NewAdaptiveSpawnStrategy 创建自适应生成策略
//
// 参数：
//
//	registry - 波次配置注册表
//	difficulty - 难度来源（通常是 *PerformanceTracker）
//	rng - 随机数来源，nil 时使用以当前时间为种子的随机源
func NewAdaptiveSpawnStrategy(registry *config.WaveConfigRegistry, difficulty DifficultySource, rng utils.RandomSource) *AdaptiveSpawnStrategy {
	if rng == nil {
		rng = utils.NewSeededRandom(0)
	}
	return &AdaptiveSpawnStrategy{
		registry:   registry,
		difficulty: difficulty,
		rng:        rng,
	}
}

// SetVerbose 设置是否输出详细日志
func (s *AdaptiveSpawnStrategy) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// CalculateNextSpawnDelay 计算下一次生成的延迟
//
// 公式：
//
//	raw   = max(floor, baseSpawnRate - spawnRateAcceleration*currentSpawnCount)
//	delay = max(floor, raw / modifier)
//
// modifier 为动态难度系数；表现分达到 performanceThreshold 时再乘以 adaptiveSpawnModifier。
// 对固定波次和系数，结果随 currentSpawnCount 单调不增，且不低于 floor。
func (s *AdaptiveSpawnStrategy) CalculateNextSpawnDelay(wave, currentSpawnCount int) (float64, error) {
	cfg, err := s.registry.GetConfig(wave)
	if err != nil {
		return 0, fmt.Errorf("calculate spawn delay: %w", err)
	}

	if currentSpawnCount < 0 {
		currentSpawnCount = 0
	}

	floor := s.registry.MinSpawnDelayMs()
	raw := math.Max(floor, cfg.BaseSpawnRateMs-cfg.SpawnRateAccelerationMs*float64(currentSpawnCount))
	modifier := s.spawnModifier(cfg)
	delay := math.Max(floor, raw/modifier)

	if s.verbose {
		log.Printf("[AdaptiveSpawnStrategy] Wave %d spawn #%d: raw=%.0fms modifier=%.3f delay=%.0fms",
			wave, currentSpawnCount, raw, modifier, delay)
	}

	return delay, nil
}

// spawnModifier 生成节奏使用的系数（始终为正）
func (s *AdaptiveSpawnStrategy) spawnModifier(cfg *config.WaveSpawnConfig) float64 {
	modifier := s.difficultyModifier()

	mods := cfg.DifficultyModifiers
	if mods.PerformanceThreshold > 0 && mods.AdaptiveSpawnModifier > 0 {
		if s.performanceScore() >= mods.PerformanceThreshold {
			modifier *= mods.AdaptiveSpawnModifier
		}
	}

	if modifier <= 0 || math.IsNaN(modifier) {
		return 1
	}
	return modifier
}

// SelectEnemyType 选择下一个生成的普通敌人类型
//
// 规则：
//  1. 可选集合 = wave >= minWave 且场上同类型数量 < maxConcurrent 的条目
//  2. 可选集合为空时，回退到 minWave 最小的条目（忽略并发上限），保证总有结果
//  3. 否则按 weight 加权随机选择
func (s *AdaptiveSpawnStrategy) SelectEnemyType(wave int, activeEnemies []components.Enemy) (string, error) {
	cfg, err := s.registry.GetConfig(wave)
	if err != nil {
		return "", fmt.Errorf("select enemy type: %w", err)
	}

	activeCounts := make(map[string]int, len(cfg.EnemyComposition))
	for _, enemy := range activeEnemies {
		activeCounts[enemy.Type]++
	}

	eligible := make([]config.EnemyCompositionEntry, 0, len(cfg.EnemyComposition))
	for _, entry := range cfg.EnemyComposition {
		if wave < entry.MinWave {
			continue
		}
		if entry.MaxConcurrent > 0 && activeCounts[entry.Type] >= entry.MaxConcurrent {
			continue
		}
		eligible = append(eligible, entry)
	}

	if len(eligible) == 0 {
		fallback, ok := lowestMinWaveEntry(cfg.EnemyComposition)
		if !ok {
			return "", fmt.Errorf("select enemy type: wave %d has no enemy composition: %w", wave, config.ErrNoWaveConfig)
		}
		if s.verbose {
			log.Printf("[AdaptiveSpawnStrategy] Wave %d: no eligible enemy, falling back to %s", wave, fallback.Type)
		}
		return fallback.Type, nil
	}

	weights := make([]float64, len(eligible))
	for i, entry := range eligible {
		weights[i] = entry.Weight
	}

	idx := utils.ChooseWeighted(s.rng, weights)
	if idx < 0 {
		// 所有可选条目权重为 0
		idx = 0
	}
	return eligible[idx].Type, nil
}

// lowestMinWaveEntry 返回 minWave 最小的条目，相同时取配置中靠前的；entries 为空时 ok 为 false
func lowestMinWaveEntry(entries []config.EnemyCompositionEntry) (config.EnemyCompositionEntry, bool) {
	if len(entries) == 0 {
		return config.EnemyCompositionEntry{}, false
	}
	best := entries[0]
	for _, entry := range entries[1:] {
		if entry.MinWave < best.MinWave {
			best = entry
		}
	}
	return best, true
}

// ShouldSpawnBoss 本次调度是否生成 Boss
//
// 无 Boss 配置或波次低于 minWave 时确定返回 false，
// 否则以 spawnChance 的概率返回 true。每次调度只判定一次。
func (s *AdaptiveSpawnStrategy) ShouldSpawnBoss(wave, currentSpawnCount int) bool {
	cfg, err := s.registry.GetConfig(wave)
	if err != nil || !cfg.HasBoss() {
		return false
	}

	boss := cfg.BossConfig
	if wave < boss.MinWave || boss.SpawnChance <= 0 {
		return false
	}
	if boss.SpawnChance >= 1 {
		return true
	}

	spawn := s.rng.Float64() < boss.SpawnChance
	if spawn && s.verbose {
		log.Printf("[AdaptiveSpawnStrategy] Boss roll succeeded for wave %d at spawn #%d (chance=%.2f)",
			wave, currentSpawnCount, boss.SpawnChance)
	}
	return spawn
}

// ApplyDifficultyScaling 返回缩放后的敌人副本
//
// health *= healthScalingFactor^(wave-1) * modifier
// speed  *= speedScalingFactor^(wave-1)
// Boss 额外乘以 Boss 的血量/速度/金币倍率。结果不低于正的下限。
func (s *AdaptiveSpawnStrategy) ApplyDifficultyScaling(enemy components.Enemy, wave int) components.Enemy {
	scaled := enemy

	healthFactor, speedFactor := 1.0, 1.0
	var boss *config.BossSpawnConfig
	if cfg, err := s.registry.GetConfig(wave); err == nil {
		healthFactor = cfg.DifficultyModifiers.HealthScalingFactor
		speedFactor = cfg.DifficultyModifiers.SpeedScalingFactor
		boss = cfg.BossConfig
	} else {
		log.Printf("[AdaptiveSpawnStrategy] Warning: scaling %s without wave config: %v", enemy.Type, err)
	}

	exponent := float64(scalingExponent(wave))
	scaled.Health *= math.Pow(healthFactor, exponent) * s.difficultyModifier()
	scaled.Speed *= math.Pow(speedFactor, exponent)

	if enemy.IsBoss && boss != nil {
		scaled.Health *= boss.HealthMultiplier
		scaled.Speed *= boss.SpeedMultiplier
		scaled.Gold *= boss.GoldMultiplier
	}

	scaled.Health = atLeast(scaled.Health, MinScaledHealth)
	scaled.Speed = atLeast(scaled.Speed, MinScaledStat)
	scaled.Gold = atLeast(scaled.Gold, 0)

	return scaled
}

// scalingExponent 属性缩放的指数，第1波不缩放
func scalingExponent(wave int) int {
	if wave <= 1 {
		return 0
	}
	return wave - 1
}

func atLeast(v, min float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	return v
}

func (s *AdaptiveSpawnStrategy) difficultyModifier() float64 {
	if s.difficulty == nil {
		return 1
	}
	return s.difficulty.GetAdaptiveDifficultyModifier()
}

func (s *AdaptiveSpawnStrategy) performanceScore() float64 {
	if s.difficulty == nil {
		return DefaultPerformanceScore
	}
	return s.difficulty.GetPerformanceScore()
}
