package components

// SpawnRunState 当前波次的生成运行状态
// 由 SpawnController 独占持有：波次开始时创建，波次结束时丢弃
//
// 时间单位：毫秒
type SpawnRunState struct {
	// Wave 当前波次号（从1开始）
	Wave int `json:"wave"`

	// CurrentSpawnCount 本波已生成的敌人数
	CurrentSpawnCount int `json:"currentSpawnCount"`

	// MaxEnemies 本波生成上限（来自 maxEnemiesPerWave）
	MaxEnemies int `json:"maxEnemies"`

	// CountdownRemainingMs 距离下一次生成的剩余时间
	// 每次 Tick 递减，<= 0 时触发生成；超出部分会累加到下一次延迟上
	CountdownRemainingMs float64 `json:"countdownRemainingMs"`

	// LastDelayMs 最近一次设置的生成延迟（调试用）
	LastDelayMs float64 `json:"lastDelayMs"`

	// ElapsedMs 本波累计经过的时间（暂停期间不计）
	ElapsedMs float64 `json:"elapsedMs"`

	// BossesSpawned 本波已生成的 Boss 数
	BossesSpawned int `json:"bossesSpawned"`

	// IsPaused 是否暂停，暂停时倒计时不递减
	IsPaused bool `json:"isPaused"`
}
