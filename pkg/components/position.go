package components

// PositionComponent 敌人在预览场地中的位置（像素）
type PositionComponent struct {
	X, Y float64
	Lane int // 所在行（从0开始）
}

// VelocityComponent 敌人的移动速度（像素/秒），向左为负
type VelocityComponent struct {
	VX float64
}
