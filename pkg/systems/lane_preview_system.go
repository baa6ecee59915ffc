package systems

import (
	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/ecs"
	"github.com/google/uuid"
)

// LanePreviewConfig 预览场地参数
type LanePreviewConfig struct {
	LaneCount     int     // 行数
	LaneHeight    float64 // 行高（像素）
	TopY          float64 // 第一行的 Y 坐标
	SpawnX        float64 // 敌人出现的 X 坐标
	EndX          float64 // 敌人到达终点的 X 坐标
	DefenseX      float64 // 防线范围：X 小于该值的敌人受到塔的伤害
	PixelsPerUnit float64 // Enemy.Speed 每单位对应的像素/秒
	TowerDPS      float64 // 每座塔的每秒伤害
}

// DefaultLanePreviewConfig 800x600 窗口使用的默认参数
var DefaultLanePreviewConfig = LanePreviewConfig{
	LaneCount:     5,
	LaneHeight:    90,
	TopY:          110,
	SpawnX:        780,
	EndX:          40,
	DefenseX:      520,
	PixelsPerUnit: 30,
	TowerDPS:      12,
}

// LanePreviewSystem 生成预览中的敌人移动与防线伤害
//
// 敌人从右侧进入，匀速向左移动；进入防线范围后按塔数受到持续伤害。
// 被击杀或到达终点的敌人由 Update 返回，由调用方从名册中移除。
type LanePreviewSystem struct {
	entityManager *ecs.EntityManager
	config        LanePreviewConfig
	placed        int
}

// NewLanePreviewSystem 创建预览系统
func NewLanePreviewSystem(em *ecs.EntityManager, cfg LanePreviewConfig) *LanePreviewSystem {
	if cfg.LaneCount < 1 {
		cfg.LaneCount = 1
	}
	return &LanePreviewSystem{entityManager: em, config: cfg}
}

// Place 为刚生成的敌人挂载位置、速度和血量组件，行号按生成顺序轮换
func (s *LanePreviewSystem) Place(entityID ecs.EntityID, enemy components.Enemy) {
	lane := s.placed % s.config.LaneCount
	s.placed++

	ecs.AddComponent(s.entityManager, entityID, &components.PositionComponent{
		X:    s.config.SpawnX,
		Y:    s.config.TopY + float64(lane)*s.config.LaneHeight,
		Lane: lane,
	})
	ecs.AddComponent(s.entityManager, entityID, &components.VelocityComponent{
		VX: -enemy.Speed * s.config.PixelsPerUnit,
	})
	ecs.AddComponent(s.entityManager, entityID, &components.HealthComponent{
		CurrentHealth: enemy.Health,
		MaxHealth:     enemy.Health,
	})
}

// Update 推进 dt 秒
//
// 返回：
//
//	killed - 被防线击杀的敌人
//	leaked - 到达终点的敌人
func (s *LanePreviewSystem) Update(dt float64, towers int) (killed, leaked []uuid.UUID) {
	damage := float64(towers) * s.config.TowerDPS * dt

	for _, entityID := range ecs.GetEntitiesWith1[*components.PositionComponent](s.entityManager) {
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, entityID)
		enemy, ok := ecs.GetComponent[*components.Enemy](s.entityManager, entityID)
		if !ok {
			continue
		}

		if vel, ok := ecs.GetComponent[*components.VelocityComponent](s.entityManager, entityID); ok {
			pos.X += vel.VX * dt
		}

		if pos.X <= s.config.EndX {
			leaked = append(leaked, enemy.ID)
			continue
		}

		if pos.X < s.config.DefenseX && damage > 0 {
			if health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, entityID); ok {
				health.CurrentHealth -= damage
				if health.CurrentHealth <= 0 {
					killed = append(killed, enemy.ID)
				}
			}
		}
	}

	return killed, leaked
}
