package systems

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/config"
	"github.com/decker502/wavespawn/pkg/entities"
	"github.com/decker502/wavespawn/pkg/utils"
)

// SpawnState 生成控制器的波次生命周期状态
type SpawnState int

const (
	// SpawnStateIdle 没有进行中的波次
	SpawnStateIdle SpawnState = iota
	// SpawnStateActive 波次进行中，按倒计时生成敌人
	SpawnStateActive
	// SpawnStateDraining 本波已生成完毕，等待宿主报告波次完成
	SpawnStateDraining
)

func (s SpawnState) String() string {
	switch s {
	case SpawnStateIdle:
		return "Idle"
	case SpawnStateActive:
		return "Active"
	case SpawnStateDraining:
		return "Draining"
	default:
		return fmt.Sprintf("SpawnState(%d)", int(s))
	}
}

// EnemyManager 场上敌人的管理方
//
// 控制器只读取快照并发出生成指令，从不直接修改场上敌人集合。
type EnemyManager interface {
	// ActiveEnemies 返回场上敌人快照，enemyType 为空时返回全部
	ActiveEnemies(enemyType string) []components.Enemy
	// Spawn 接收一个已缩放的敌人
	Spawn(enemy components.Enemy)
}

// SpawnObserver 波次生命周期事件的监听者（指标、调试输出等）
type SpawnObserver interface {
	OnWaveStarted(wave int, firstDelayMs float64)
	OnEnemySpawned(enemy components.Enemy, nextDelayMs float64)
	OnWaveDraining(wave int, spawned int)
	OnWaveCompleted(sample PerformanceSample, performanceScore, difficultyModifier float64)
}

type noopObserver struct{}

func (noopObserver) OnWaveStarted(int, float64)                         {}
func (noopObserver) OnEnemySpawned(components.Enemy, float64)           {}
func (noopObserver) OnWaveDraining(int, int)                            {}
func (noopObserver) OnWaveCompleted(PerformanceSample, float64, float64) {}

// SpawnController 波次生成控制器
//
// 状态机：Idle → Active → Draining → Idle
//
// 职责：
//   - StartWave 初始化 SpawnRunState 和首次倒计时
//   - Tick 推进倒计时，到期时按 Boss 判定、类型选择、属性缩放的顺序生成敌人
//   - 一次 Tick 可以生成多个敌人，超出的时间累加到下一次倒计时上
//   - ReportWaveComplete 将波次结果转交 PerformanceTracker
//
// 控制器不持有计时器，时间只通过 Tick 推进。非并发安全，由宿主在单一线程驱动。
type SpawnController struct {
	strategy SpawnStrategy
	tracker  *PerformanceTracker
	registry *config.WaveConfigRegistry
	factory  *entities.EnemyFactory
	enemies  EnemyManager
	rng      utils.RandomSource
	observer SpawnObserver

	state   SpawnState
	started bool // 是否调用过 StartWave
	run     components.SpawnRunState

	verbose bool
}

// NewSpawnController 创建生成控制器
//
// 参数：
//
//	strategy - 生成策略
//	tracker - 表现追踪器，接收波次完成报告
//	registry - 波次配置注册表（Boss 类型选择、生成上限）
//	factory - 敌人工厂，创建未缩放的敌人
//	enemies - 场上敌人管理方
//	rng - Boss 类型选择使用的随机源，nil 时使用时间种子
func NewSpawnController(
	strategy SpawnStrategy,
	tracker *PerformanceTracker,
	registry *config.WaveConfigRegistry,
	factory *entities.EnemyFactory,
	enemies EnemyManager,
	rng utils.RandomSource,
) *SpawnController {
	if rng == nil {
		rng = utils.NewSeededRandom(0)
	}
	return &SpawnController{
		strategy: strategy,
		tracker:  tracker,
		registry: registry,
		factory:  factory,
		enemies:  enemies,
		rng:      rng,
		observer: noopObserver{},
		state:    SpawnStateIdle,
	}
}

// SetVerbose 设置是否输出每次生成的详细日志
func (c *SpawnController) SetVerbose(verbose bool) {
	c.verbose = verbose
}

// SetObserver 设置事件监听者，nil 表示不监听
func (c *SpawnController) SetObserver(observer SpawnObserver) {
	if observer == nil {
		observer = noopObserver{}
	}
	c.observer = observer
}

// State 当前状态
func (c *SpawnController) State() SpawnState {
	return c.state
}

// RunState 返回当前波次运行状态的副本
func (c *SpawnController) RunState() components.SpawnRunState {
	return c.run
}

// StartWave 开始一个新波次
//
// 只能在 Idle 状态调用，否则返回包装 ErrWaveInProgress 的 *UsageError。
// 波次没有可用配置时返回 *ConfigurationError，状态保持不变。
func (c *SpawnController) StartWave(wave int) error {
	if c.state != SpawnStateIdle {
		return &UsageError{Op: "StartWave", State: c.state, Err: ErrWaveInProgress}
	}

	cfg, err := c.registry.GetConfig(wave)
	if err != nil {
		return &ConfigurationError{Wave: wave, Err: err}
	}

	firstDelay, err := c.strategy.CalculateNextSpawnDelay(wave, 0)
	if err != nil {
		return &ConfigurationError{Wave: wave, Err: err}
	}

	c.run = components.SpawnRunState{
		Wave:                 wave,
		MaxEnemies:           cfg.MaxEnemiesPerWave,
		CountdownRemainingMs: firstDelay,
		LastDelayMs:          firstDelay,
	}
	c.state = SpawnStateActive
	c.started = true

	log.Printf("[SpawnController] Wave %d started: maxEnemies=%d, first spawn in %.0fms",
		wave, c.run.MaxEnemies, firstDelay)
	c.observer.OnWaveStarted(wave, firstDelay)

	if c.run.MaxEnemies <= 0 {
		c.enterDraining()
	}
	return nil
}

// Tick 推进时间
//
// 参数：
//
//	deltaMs - 经过的时间（毫秒），负数和 NaN 按 0 处理
//
// 返回：
//
//	本次 Tick 生成的敌人（已缩放），按生成顺序
//
// 在任何 StartWave 之前调用返回包装 ErrNotStarted 的 *UsageError。
// Idle、Draining 或暂停时不生成任何敌人。
func (c *SpawnController) Tick(deltaMs float64) ([]components.Enemy, error) {
	if !c.started {
		return nil, &UsageError{Op: "Tick", State: c.state, Err: ErrNotStarted}
	}
	if c.state != SpawnStateActive || c.run.IsPaused {
		return nil, nil
	}

	if deltaMs < 0 || math.IsNaN(deltaMs) {
		deltaMs = 0
	}

	c.run.ElapsedMs += deltaMs
	c.run.CountdownRemainingMs -= deltaMs

	var spawned []components.Enemy
	for c.run.CountdownRemainingMs <= 0 && c.run.CurrentSpawnCount < c.run.MaxEnemies {
		enemy, err := c.spawnNext()
		if err != nil {
			return spawned, &ConfigurationError{Wave: c.run.Wave, Err: err}
		}
		spawned = append(spawned, enemy)

		nextDelay := 0.0
		if c.run.CurrentSpawnCount < c.run.MaxEnemies {
			nextDelay, err = c.strategy.CalculateNextSpawnDelay(c.run.Wave, c.run.CurrentSpawnCount)
			if err != nil {
				return spawned, &ConfigurationError{Wave: c.run.Wave, Err: err}
			}
			// 超出部分（CountdownRemainingMs 为负）保留到下一次
			c.run.CountdownRemainingMs += nextDelay
			c.run.LastDelayMs = nextDelay
		}
		c.observer.OnEnemySpawned(enemy, nextDelay)
	}

	if c.run.CurrentSpawnCount >= c.run.MaxEnemies {
		c.run.CountdownRemainingMs = 0
		c.enterDraining()
	}

	return spawned, nil
}

// spawnNext 生成一个敌人：Boss 判定 → 类型选择 → 创建 → 缩放 → 交给 EnemyManager
func (c *SpawnController) spawnNext() (components.Enemy, error) {
	wave := c.run.Wave

	isBoss := false
	enemyType := ""
	if c.strategy.ShouldSpawnBoss(wave, c.run.CurrentSpawnCount) {
		bossType, err := c.pickBossType(wave)
		if err != nil {
			return components.Enemy{}, err
		}
		if bossType != "" {
			isBoss = true
			enemyType = bossType
		}
	}

	if !isBoss {
		// 每次生成都重新取快照，同一 Tick 内之前的生成也计入并发上限
		selected, err := c.strategy.SelectEnemyType(wave, c.enemies.ActiveEnemies(""))
		if err != nil {
			return components.Enemy{}, err
		}
		enemyType = selected
	}

	enemy := c.factory.NewEnemy(enemyType, wave, isBoss)
	enemy = c.strategy.ApplyDifficultyScaling(enemy, wave)
	c.enemies.Spawn(enemy)

	c.run.CurrentSpawnCount++
	if isBoss {
		c.run.BossesSpawned++
		log.Printf("[SpawnController] Wave %d: boss %s spawned (health=%.0f)", wave, enemy.Type, enemy.Health)
	} else if c.verbose {
		log.Printf("[SpawnController] Wave %d: spawned %s #%d/%d (health=%.1f, speed=%.2f)",
			wave, enemy.Type, c.run.CurrentSpawnCount, c.run.MaxEnemies, enemy.Health, enemy.Speed)
	}

	return enemy, nil
}

// pickBossType 在 Boss 类型中均匀随机选择一个
func (c *SpawnController) pickBossType(wave int) (string, error) {
	cfg, err := c.registry.GetConfig(wave)
	if err != nil {
		return "", err
	}
	if !cfg.HasBoss() {
		return "", nil
	}
	types := cfg.BossConfig.BossTypes
	return types[c.rng.Intn(len(types))], nil
}

func (c *SpawnController) enterDraining() {
	c.state = SpawnStateDraining
	log.Printf("[SpawnController] Wave %d draining: %d spawned (%d bosses) in %.0fms",
		c.run.Wave, c.run.CurrentSpawnCount, c.run.BossesSpawned, c.run.ElapsedMs)
	c.observer.OnWaveDraining(c.run.Wave, c.run.CurrentSpawnCount)
}

// ReportWaveComplete 宿主报告本波所有敌人已被解决
//
// 只能在 Draining 状态下针对当前波次调用；结果转交 PerformanceTracker，之后回到 Idle。
func (c *SpawnController) ReportWaveComplete(wave int, completionTimeMs float64, towersUsed int) error {
	if c.state != SpawnStateDraining {
		return &UsageError{Op: "ReportWaveComplete", State: c.state, Err: ErrWaveNotDraining}
	}
	if wave != c.run.Wave {
		return &UsageError{
			Op:    "ReportWaveComplete",
			State: c.state,
			Err:   fmt.Errorf("%w: reported %d, active %d", ErrWaveMismatch, wave, c.run.Wave),
		}
	}

	sample := c.tracker.TrackPlayerPerformance(wave, completionTimeMs, towersUsed)
	score := c.tracker.GetPerformanceScore()
	modifier := c.tracker.GetAdaptiveDifficultyModifier()
	c.state = SpawnStateIdle

	log.Printf("[SpawnController] Wave %d complete: sample=%.3f score=%.3f modifier=%.3f",
		wave, sample.Score, score, modifier)
	c.observer.OnWaveCompleted(sample, score, modifier)
	return nil
}

// AbortWave 放弃当前波次，不记录表现
// 返回 false 表示没有进行中的波次
func (c *SpawnController) AbortWave() bool {
	if c.state == SpawnStateIdle {
		return false
	}
	log.Printf("[SpawnController] Wave %d aborted in state %s after %d spawns",
		c.run.Wave, c.state, c.run.CurrentSpawnCount)
	c.state = SpawnStateIdle
	c.run.IsPaused = false
	return true
}

// Pause 暂停生成倒计时
func (c *SpawnController) Pause() {
	if c.state != SpawnStateActive || c.run.IsPaused {
		return
	}
	c.run.IsPaused = true
	log.Printf("[SpawnController] Paused wave %d (%.0fms to next spawn)", c.run.Wave, c.run.CountdownRemainingMs)
}

// Resume 恢复生成倒计时
func (c *SpawnController) Resume() {
	if !c.run.IsPaused {
		return
	}
	c.run.IsPaused = false
	log.Printf("[SpawnController] Resumed wave %d", c.run.Wave)
}

// IsPaused 是否处于暂停
func (c *SpawnController) IsPaused() bool {
	return c.run.IsPaused
}
