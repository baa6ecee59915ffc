package entities

import (
	"log"

	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/ecs"
	"github.com/google/uuid"
)

// EnemyRoster 场上敌人名册
//
// 敌人管理方的参考实现：接收生成指令，并向生成控制器提供场上敌人快照。
// 每个敌人对应一个实体，携带 *components.Enemy 组件，宿主可以在同一实体上挂载
// 自己的组件（位置、动画等）。
type EnemyRoster struct {
	entityManager *ecs.EntityManager
	byID          map[uuid.UUID]ecs.EntityID
}

// NewEnemyRoster 创建敌人名册
func NewEnemyRoster(em *ecs.EntityManager) *EnemyRoster {
	return &EnemyRoster{
		entityManager: em,
		byID:          make(map[uuid.UUID]ecs.EntityID),
	}
}

// Spawn 将敌人加入场上
func (r *EnemyRoster) Spawn(enemy components.Enemy) {
	entityID := r.entityManager.CreateEntity()
	e := enemy
	ecs.AddComponent(r.entityManager, entityID, &e)
	r.byID[enemy.ID] = entityID
}

// ActiveEnemies 返回场上敌人的快照（按生成顺序）
// enemyType 为空时返回全部类型
func (r *EnemyRoster) ActiveEnemies(enemyType string) []components.Enemy {
	entityIDs := ecs.GetEntitiesWith1[*components.Enemy](r.entityManager)
	result := make([]components.Enemy, 0, len(entityIDs))

	for _, entityID := range entityIDs {
		enemy, ok := ecs.GetComponent[*components.Enemy](r.entityManager, entityID)
		if !ok {
			continue
		}
		if enemyType != "" && enemy.Type != enemyType {
			continue
		}
		result = append(result, *enemy)
	}
	return result
}

// EntityOf 查找敌人对应的实体
func (r *EnemyRoster) EntityOf(id uuid.UUID) (ecs.EntityID, bool) {
	entityID, ok := r.byID[id]
	return entityID, ok
}

// Resolve 敌人被击杀或到达终点，从场上移除
// 返回 false 表示该敌人不在场上
func (r *EnemyRoster) Resolve(id uuid.UUID) bool {
	entityID, ok := r.byID[id]
	if !ok {
		return false
	}

	delete(r.byID, id)
	r.entityManager.DestroyEntity(entityID)
	r.entityManager.RemoveMarkedEntities()
	return true
}

// ActiveCount 场上敌人数量
func (r *EnemyRoster) ActiveCount() int {
	return len(r.byID)
}

// Clear 移除所有场上敌人
func (r *EnemyRoster) Clear() {
	for id, entityID := range r.byID {
		r.entityManager.DestroyEntity(entityID)
		delete(r.byID, id)
	}
	removed := r.entityManager.RemoveMarkedEntities()
	if removed > 0 {
		log.Printf("[EnemyRoster] Cleared %d enemies", removed)
	}
}
