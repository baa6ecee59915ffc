package components

// HealthComponent 预览宿主中敌人的剩余血量
// 初始值取自生成时缩放后的 Enemy.Health
type HealthComponent struct {
	CurrentHealth float64 // 当前血量
	MaxHealth     float64 // 生成时的血量
}

// Fraction 剩余血量比例 [0,1]
func (h *HealthComponent) Fraction() float64 {
	if h.MaxHealth <= 0 || h.CurrentHealth <= 0 {
		return 0
	}
	if h.CurrentHealth >= h.MaxHealth {
		return 1
	}
	return h.CurrentHealth / h.MaxHealth
}
