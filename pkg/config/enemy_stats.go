package config

import (
	"fmt"
	"os"

	"github.com/decker502/wavespawn/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// DefaultEnemyStatsPath 内嵌的敌人属性配置路径
const DefaultEnemyStatsPath = "data/enemy_stats.yaml"

// DefaultEnemyStats 未在配置中出现的敌人类型使用的基础属性
var DefaultEnemyStats = EnemyStats{
	BaseHealth: 100,
	BaseSpeed:  1,
	GoldReward: 10,
}

// EnemyStats 单个敌人类型的基础属性（未缩放）
type EnemyStats struct {
	BaseHealth float64 `yaml:"baseHealth"` // 基础血量
	BaseSpeed  float64 `yaml:"baseSpeed"`  // 基础移动速度
	GoldReward float64 `yaml:"goldReward"` // 击杀奖励金币
}

// EnemyStatsConfig 敌人属性配置文件结构
type EnemyStatsConfig struct {
	Enemies map[string]EnemyStats `yaml:"enemies"` // 敌人类型到属性的映射
}

// LoadEnemyStats 从磁盘 YAML 文件加载敌人属性配置
func LoadEnemyStats(filePath string) (*EnemyStatsConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read enemy stats file %s: %w", filePath, err)
	}
	return ParseEnemyStats(data)
}

// LoadEmbeddedEnemyStats 从内嵌资源加载敌人属性配置
// 需要先调用 embedded.Init()
func LoadEmbeddedEnemyStats(path string) (*EnemyStatsConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read enemy stats file %s: %w", path, err)
	}
	return ParseEnemyStats(data)
}

// ParseEnemyStats 解析并验证敌人属性 YAML
func ParseEnemyStats(data []byte) (*EnemyStatsConfig, error) {
	var config EnemyStatsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse enemy stats YAML: %w", err)
	}

	if err := validateEnemyStats(&config); err != nil {
		return nil, fmt.Errorf("invalid enemy stats: %w", err)
	}

	return &config, nil
}

// validateEnemyStats 验证敌人属性配置的完整性和合法性
func validateEnemyStats(config *EnemyStatsConfig) error {
	if len(config.Enemies) == 0 {
		return fmt.Errorf("at least one enemy type is required")
	}

	for enemyType, stats := range config.Enemies {
		if enemyType == "" {
			return fmt.Errorf("enemy type cannot be empty")
		}
		if stats.BaseHealth <= 0 {
			return fmt.Errorf("enemy %s: baseHealth must be positive, got %v", enemyType, stats.BaseHealth)
		}
		if stats.BaseSpeed <= 0 {
			return fmt.Errorf("enemy %s: baseSpeed must be positive, got %v", enemyType, stats.BaseSpeed)
		}
		if stats.GoldReward < 0 {
			return fmt.Errorf("enemy %s: goldReward cannot be negative, got %v", enemyType, stats.GoldReward)
		}
	}

	return nil
}

// GetEnemyStats 获取指定敌人类型的基础属性
// 如果类型不存在（或配置为空），返回 DefaultEnemyStats 和 false
func (c *EnemyStatsConfig) GetEnemyStats(enemyType string) (EnemyStats, bool) {
	if c == nil {
		return DefaultEnemyStats, false
	}
	if stats, ok := c.Enemies[enemyType]; ok {
		return stats, true
	}
	return DefaultEnemyStats, false
}

// MissingStats 返回 types 中没有配置基础属性的类型
func (c *EnemyStatsConfig) MissingStats(types []string) []string {
	var missing []string
	for _, enemyType := range types {
		if _, ok := c.GetEnemyStats(enemyType); !ok {
			missing = append(missing, enemyType)
		}
	}
	return missing
}
