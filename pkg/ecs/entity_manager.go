package ecs

import (
	"reflect"
	"sort"
)

// EntityID 是实体的唯一标识符，0 保留为无效ID
type EntityID uint64

// EntityManager 管理所有实体和组件
//
// 组件按类型存储，每个实体每种类型最多一个组件。
// 查询结果按 EntityID 升序返回，保证遍历顺序稳定。
type EntityManager struct {
	nextID uint64
	// 实体-组件映射: EntityID -> ComponentType -> Component实例
	components map[EntityID]map[reflect.Type]any
	// 待删除的实体ID列表
	entitiesToDestroy []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:            1,
		components:        make(map[EntityID]map[reflect.Type]any),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	id := EntityID(em.nextID)
	em.nextID++
	em.components[id] = make(map[reflect.Type]any)
	return id
}

// DestroyEntity 标记实体待删除（不立即删除）
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// RemoveMarkedEntities 清理所有标记删除的实体，返回实际删除数量
func (em *EntityManager) RemoveMarkedEntities() int {
	removed := 0
	for _, id := range em.entitiesToDestroy {
		if _, exists := em.components[id]; exists {
			delete(em.components, id)
			removed++
		}
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0]
	return removed
}

// Exists 实体是否存在（未被删除）
func (em *EntityManager) Exists(id EntityID) bool {
	_, exists := em.components[id]
	return exists
}

// EntityCount 当前实体数量
func (em *EntityManager) EntityCount() int {
	return len(em.components)
}

// AddComponent 为实体添加组件，同类型组件会被覆盖
// 实体不存在时忽略
func AddComponent[T any](em *EntityManager, id EntityID, component T) {
	if compMap, exists := em.components[id]; exists {
		compMap[reflect.TypeOf((*T)(nil)).Elem()] = component
	}
}

// GetComponent 获取实体的特定类型组件
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	var zero T
	compMap, exists := em.components[id]
	if !exists {
		return zero, false
	}
	comp, found := compMap[reflect.TypeOf((*T)(nil)).Elem()]
	if !found {
		return zero, false
	}
	return comp.(T), true
}

// HasComponent 检查实体是否拥有特定类型组件
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	if compMap, exists := em.components[id]; exists {
		_, found := compMap[reflect.TypeOf((*T)(nil)).Elem()]
		return found
	}
	return false
}

// RemoveComponent 从实体移除指定类型的组件
func RemoveComponent[T any](em *EntityManager, id EntityID) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, reflect.TypeOf((*T)(nil)).Elem())
	}
}

// GetEntitiesWith1 查询拥有指定组件类型的所有实体（按ID升序）
func GetEntitiesWith1[T any](em *EntityManager) []EntityID {
	componentType := reflect.TypeOf((*T)(nil)).Elem()
	result := make([]EntityID, 0)

	for id, compMap := range em.components {
		if _, found := compMap[componentType]; found {
			result = append(result, id)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
