package components

import "github.com/google/uuid"

// Enemy 一个已生成（或待生成）的敌人实例
//
// 由敌人工厂根据基础属性创建，经生成策略缩放后交给敌人管理方。
// 值类型，缩放时返回副本。
type Enemy struct {
	ID     uuid.UUID // 生成时分配的唯一ID
	Type   string    // 敌人类型（与配置中的 type 对应）
	Wave   int       // 所属波次（从1开始）
	IsBoss bool

	Health float64
	Speed  float64
	Gold   float64 // 击杀奖励
}
