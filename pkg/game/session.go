package game

import (
	"fmt"
	"log"
	"sync"

	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/config"
	"github.com/decker502/wavespawn/pkg/ecs"
	"github.com/decker502/wavespawn/pkg/embedded"
	"github.com/decker502/wavespawn/pkg/entities"
	"github.com/decker502/wavespawn/pkg/metrics"
	"github.com/decker502/wavespawn/pkg/systems"
	"github.com/decker502/wavespawn/pkg/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// SessionOptions 会话创建参数
type SessionOptions struct {
	// WaveConfig 波次生成配置（必填）
	WaveConfig *config.WaveSpawnFile

	// EnemyStats 敌人基础属性，nil 时所有类型使用默认属性
	EnemyStats *config.EnemyStatsConfig

	// Seed 随机种子，0 表示使用当前时间
	Seed int64

	// Registerer 指标注册表，nil 时不导出指标
	Registerer prometheus.Registerer

	// Verbose 输出每次生成的详细日志
	Verbose bool
}

// Session 一局游戏的生成会话
//
// 持有表现追踪器、生成策略、生成控制器和场上敌人名册，生命周期与一局游戏相同。
// 表现历史只在会话内有效，不做持久化。
// 所有公开方法由内部互斥锁串行化，调试服务器可以在其他 goroutine 中读取状态。
type Session struct {
	mu sync.Mutex

	entityManager *ecs.EntityManager
	registry      *config.WaveConfigRegistry
	tracker       *systems.PerformanceTracker
	strategy      *systems.AdaptiveSpawnStrategy
	controller    *systems.SpawnController
	roster        *entities.EnemyRoster
	metrics       *metrics.SpawnMetrics

	currentWave int
}

// NewSession 根据配置创建会话
func NewSession(opts SessionOptions) (*Session, error) {
	registry, err := config.NewWaveConfigRegistry(opts.WaveConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build wave config registry: %w", err)
	}

	rng := utils.NewSeededRandom(opts.Seed)
	em := ecs.NewEntityManager()
	tracker := systems.NewPerformanceTracker()
	strategy := systems.NewAdaptiveSpawnStrategy(registry, tracker, rng)
	roster := entities.NewEnemyRoster(em)
	controller := systems.NewSpawnController(strategy, tracker, registry, entities.NewEnemyFactory(opts.EnemyStats), roster, rng)

	strategy.SetVerbose(opts.Verbose)
	controller.SetVerbose(opts.Verbose)

	s := &Session{
		entityManager: em,
		registry:      registry,
		tracker:       tracker,
		strategy:      strategy,
		controller:    controller,
		roster:        roster,
	}

	if opts.Registerer != nil {
		s.metrics = metrics.New(opts.Registerer)
		controller.SetObserver(s.metrics)
	}

	log.Printf("[Session] Created (seed=%d, wave ranges=%d, metrics=%v)", opts.Seed, registry.Len(), s.metrics != nil)
	return s, nil
}

// NewDefaultSession 使用内嵌的 data/ 配置创建会话
// 调用前必须已经执行 embedded.Init；敌人属性文件缺失时使用默认属性
func NewDefaultSession(seed int64, reg prometheus.Registerer) (*Session, error) {
	waveConfig, err := config.LoadEmbeddedWaveSpawnConfig(config.DefaultWaveSpawnConfigPath)
	if err != nil {
		return nil, err
	}

	// 敌人属性可选，缺失时所有类型使用默认属性
	var enemyStats *config.EnemyStatsConfig
	if embedded.Exists(config.DefaultEnemyStatsPath) {
		enemyStats, err = config.LoadEmbeddedEnemyStats(config.DefaultEnemyStatsPath)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("[Session] Warning: %s not embedded, using default enemy stats", config.DefaultEnemyStatsPath)
	}

	return NewSession(SessionOptions{
		WaveConfig: waveConfig,
		EnemyStats: enemyStats,
		Seed:       seed,
		Registerer: reg,
	})
}

// StartNextWave 开始下一波，返回新波次号
func (s *Session) StartNextWave() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.currentWave + 1
	if err := s.controller.StartWave(next); err != nil {
		return s.currentWave, err
	}
	s.currentWave = next
	return next, nil
}

// Tick 推进生成时间，返回本次生成的敌人
func (s *Session) Tick(deltaMs float64) ([]components.Enemy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Tick(deltaMs)
}

// ResolveEnemy 敌人被击杀或到达终点
func (s *Session) ResolveEnemy(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Resolve(id)
}

// TryCompleteWave 本波全部生成且场上已无敌人时，报告波次完成
//
// 返回 true 表示波次已完成并计入表现历史；条件未满足时返回 false 且不报错。
func (s *Session) TryCompleteWave(completionTimeMs float64, towersUsed int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controller.State() != systems.SpawnStateDraining || s.roster.ActiveCount() > 0 {
		return false, nil
	}
	if err := s.controller.ReportWaveComplete(s.currentWave, completionTimeMs, towersUsed); err != nil {
		return false, err
	}
	return true, nil
}

// AbortWave 放弃当前波次并清空场上敌人
func (s *Session) AbortWave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.controller.AbortWave() {
		return false
	}
	s.roster.Clear()
	return true
}

// Pause 暂停生成
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Pause()
}

// Resume 恢复生成
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Resume()
}

// State 生成控制器当前状态
func (s *Session) State() systems.SpawnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.State()
}

// CurrentWave 最近一次开始的波次号，未开始时为 0
func (s *Session) CurrentWave() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentWave
}

// ActiveEnemies 场上敌人快照
func (s *Session) ActiveEnemies() []components.Enemy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.ActiveEnemies("")
}

// EntityManager 敌人实体所在的实体管理器
// 宿主可以在敌人实体上挂载自己的组件，调用方负责与 Tick 的同步
func (s *Session) EntityManager() *ecs.EntityManager {
	return s.entityManager
}

// EntityOf 敌人对应的实体
func (s *Session) EntityOf(id uuid.UUID) (ecs.EntityID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.EntityOf(id)
}

// Tracker 表现追踪器（自身并发安全）
func (s *Session) Tracker() *systems.PerformanceTracker {
	return s.tracker
}

// SessionStatus 会话状态快照
type SessionStatus struct {
	Wave               int                         `json:"wave"`
	State              string                      `json:"state"`
	Run                components.SpawnRunState    `json:"run"`
	ActiveEnemies      int                         `json:"activeEnemies"`
	PerformanceScore   float64                     `json:"performanceScore"`
	DifficultyModifier float64                     `json:"difficultyModifier"`
	History            []systems.PerformanceSample `json:"history"`
}

// Status 返回会话状态快照
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionStatus{
		Wave:               s.currentWave,
		State:              s.controller.State().String(),
		Run:                s.controller.RunState(),
		ActiveEnemies:      s.roster.ActiveCount(),
		PerformanceScore:   s.tracker.GetPerformanceScore(),
		DifficultyModifier: s.tracker.GetAdaptiveDifficultyModifier(),
		History:            s.tracker.Samples(),
	}
}
