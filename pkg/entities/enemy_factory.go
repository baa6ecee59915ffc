package entities

import (
	"log"

	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/config"
	"github.com/google/uuid"
)

// EnemyFactory 根据基础属性配置创建未缩放的敌人
type EnemyFactory struct {
	stats *config.EnemyStatsConfig
}

// NewEnemyFactory 创建敌人工厂
// stats 为 nil 时所有类型都使用 config.DefaultEnemyStats
func NewEnemyFactory(stats *config.EnemyStatsConfig) *EnemyFactory {
	return &EnemyFactory{stats: stats}
}

// NewEnemy 创建一个敌人实例（基础属性，尚未经过难度缩放）
//
// 参数：
//
//	enemyType - 敌人类型
//	wave - 所属波次
//	isBoss - 是否为 Boss
func (f *EnemyFactory) NewEnemy(enemyType string, wave int, isBoss bool) components.Enemy {
	stats, ok := f.stats.GetEnemyStats(enemyType)
	if !ok {
		log.Printf("[EnemyFactory] Warning: no stats for enemy type '%s', using defaults", enemyType)
	}

	return components.Enemy{
		ID:     uuid.New(),
		Type:   enemyType,
		Wave:   wave,
		IsBoss: isBoss,
		Health: stats.BaseHealth,
		Speed:  stats.BaseSpeed,
		Gold:   stats.GoldReward,
	}
}
