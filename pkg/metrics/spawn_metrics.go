// Package metrics 将生成控制器的生命周期事件导出为 Prometheus 指标
package metrics

import (
	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/systems"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SpawnMetrics 生成相关的 Prometheus 指标
//
// 实现 systems.SpawnObserver，通过 SpawnController.SetObserver 挂载。
// 指标注册到调用方提供的 Registerer 上，不使用全局注册表，
// 同一进程内可以存在多个会话。
type SpawnMetrics struct {
	// 波次
	WavesStarted   prometheus.Counter
	WavesCompleted prometheus.Counter
	CurrentWave    prometheus.Gauge

	// 生成
	EnemiesSpawned *prometheus.CounterVec
	BossesSpawned  *prometheus.CounterVec
	NextSpawnDelay prometheus.Gauge
	WaveSpawnCount prometheus.Histogram

	// 表现
	SampleScore        prometheus.Histogram
	PerformanceScore   prometheus.Gauge
	DifficultyModifier prometheus.Gauge
}

// New 创建生成指标并注册到 reg
func New(reg prometheus.Registerer) *SpawnMetrics {
	factory := promauto.With(reg)

	return &SpawnMetrics{
		WavesStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wavespawn_waves_started_total",
				Help: "Total number of waves started",
			},
		),
		WavesCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wavespawn_waves_completed_total",
				Help: "Total number of waves reported complete",
			},
		),
		CurrentWave: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wavespawn_current_wave",
				Help: "Wave number of the most recently started wave",
			},
		),
		EnemiesSpawned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wavespawn_enemies_spawned_total",
				Help: "Total number of enemies spawned, by enemy type",
			},
			[]string{"type"},
		),
		BossesSpawned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wavespawn_bosses_spawned_total",
				Help: "Total number of bosses spawned, by boss type",
			},
			[]string{"type"},
		),
		NextSpawnDelay: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wavespawn_next_spawn_delay_ms",
				Help: "Delay scheduled after the most recent spawn in milliseconds (0 when the wave is fully spawned)",
			},
		),
		WaveSpawnCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wavespawn_wave_spawn_count",
				Help:    "Number of enemies spawned per wave",
				Buckets: []float64{5, 10, 20, 30, 40, 60, 80, 100},
			},
		),
		SampleScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wavespawn_wave_performance_score",
				Help:    "Performance score of each completed wave",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		PerformanceScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wavespawn_performance_score",
				Help: "Rolling player performance score",
			},
		),
		DifficultyModifier: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wavespawn_difficulty_modifier",
				Help: "Adaptive difficulty modifier derived from the performance score",
			},
		),
	}
}

// OnWaveStarted 实现 systems.SpawnObserver
func (m *SpawnMetrics) OnWaveStarted(wave int, firstDelayMs float64) {
	m.WavesStarted.Inc()
	m.CurrentWave.Set(float64(wave))
	m.NextSpawnDelay.Set(firstDelayMs)
}

// OnEnemySpawned 实现 systems.SpawnObserver
func (m *SpawnMetrics) OnEnemySpawned(enemy components.Enemy, nextDelayMs float64) {
	m.EnemiesSpawned.WithLabelValues(enemy.Type).Inc()
	if enemy.IsBoss {
		m.BossesSpawned.WithLabelValues(enemy.Type).Inc()
	}
	m.NextSpawnDelay.Set(nextDelayMs)
}

// OnWaveDraining 实现 systems.SpawnObserver
func (m *SpawnMetrics) OnWaveDraining(wave int, spawned int) {
	m.WaveSpawnCount.Observe(float64(spawned))
}

// OnWaveCompleted 实现 systems.SpawnObserver
func (m *SpawnMetrics) OnWaveCompleted(sample systems.PerformanceSample, performanceScore, difficultyModifier float64) {
	m.WavesCompleted.Inc()
	m.SampleScore.Observe(sample.Score)
	m.PerformanceScore.Set(performanceScore)
	m.DifficultyModifier.Set(difficultyModifier)
}

var _ systems.SpawnObserver = (*SpawnMetrics)(nil)
