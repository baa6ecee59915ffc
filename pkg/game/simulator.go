package game

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/decker502/wavespawn/pkg/systems"
)

// ErrWaveTimeout 模拟波次超过 MaxWaveMs 仍未完成
var ErrWaveTimeout = errors.New("wave did not complete in time")

// PlayerModel 脚本化玩家：塔数随波次增长
type PlayerModel struct {
	BaseTowers  int // 第1波的塔数
	TowersEvery int // 每隔多少波增加一座塔，<= 0 表示不增加
	MaxTowers   int // 塔数上限，<= 0 表示不限
}

// TowersFor 第 wave 波使用的塔数
func (p PlayerModel) TowersFor(wave int) int {
	towers := p.BaseTowers
	if p.TowersEvery > 0 && wave > 1 {
		towers += (wave - 1) / p.TowersEvery
	}
	if p.MaxTowers > 0 && towers > p.MaxTowers {
		towers = p.MaxTowers
	}
	if towers < 0 {
		towers = 0
	}
	return towers
}

// SimulationOptions 无界面模拟参数
type SimulationOptions struct {
	Waves     int     // 模拟的波次数
	StepMs    float64 // 每次 Tick 的时间步长
	MaxWaveMs float64 // 单波最长模拟时间，超出后放弃该波
	Player    PlayerModel
	Field     systems.LanePreviewConfig
}

// DefaultSimulationOptions 默认模拟参数
func DefaultSimulationOptions() SimulationOptions {
	return SimulationOptions{
		Waves:     20,
		StepMs:    50,
		MaxWaveMs: 10 * 60 * 1000,
		Player:    PlayerModel{BaseTowers: 2, TowersEvery: 3, MaxTowers: 10},
		Field:     systems.DefaultLanePreviewConfig,
	}
}

// WaveResult 一波模拟的结果
type WaveResult struct {
	Wave               int     `json:"wave"`
	Towers             int     `json:"towers"`
	Spawned            int     `json:"spawned"`
	Bosses             int     `json:"bosses"`
	Killed             int     `json:"killed"`
	Leaked             int     `json:"leaked"`
	CompletionMs       float64 `json:"completionMs"`
	SampleScore        float64 `json:"sampleScore"`
	PerformanceScore   float64 `json:"performanceScore"`
	DifficultyModifier float64 `json:"difficultyModifier"`
}

// Simulator 无界面波次模拟器
//
// 以固定步长驱动会话，敌人在预览场地中移动并被脚本化玩家的塔击杀，
// 用于观察难度系数随表现的变化。
type Simulator struct {
	session *Session
	field   *systems.LanePreviewSystem
	opts    SimulationOptions
}

// NewSimulator 创建模拟器
func NewSimulator(session *Session, opts SimulationOptions) *Simulator {
	if opts.StepMs <= 0 {
		opts.StepMs = DefaultSimulationOptions().StepMs
	}
	if opts.MaxWaveMs <= 0 {
		opts.MaxWaveMs = DefaultSimulationOptions().MaxWaveMs
	}
	return &Simulator{
		session: session,
		field:   systems.NewLanePreviewSystem(session.EntityManager(), opts.Field),
		opts:    opts,
	}
}

// Run 依次模拟 opts.Waves 波，每波完成后调用 onWave（可为 nil）
func (s *Simulator) Run(ctx context.Context, onWave func(WaveResult)) ([]WaveResult, error) {
	results := make([]WaveResult, 0, s.opts.Waves)
	for i := 0; i < s.opts.Waves; i++ {
		result, err := s.RunWave(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if onWave != nil {
			onWave(result)
		}
	}
	return results, nil
}

// RunWave 开始下一波并模拟到波次完成
func (s *Simulator) RunWave(ctx context.Context) (WaveResult, error) {
	wave, err := s.session.StartNextWave()
	if err != nil {
		return WaveResult{}, err
	}

	towers := s.opts.Player.TowersFor(wave)
	result := WaveResult{Wave: wave, Towers: towers}
	elapsed := 0.0

	for {
		if err := ctx.Err(); err != nil {
			s.session.AbortWave()
			return result, err
		}
		if elapsed >= s.opts.MaxWaveMs {
			s.session.AbortWave()
			return result, fmt.Errorf("wave %d after %.0fms: %w", wave, elapsed, ErrWaveTimeout)
		}

		elapsed += s.opts.StepMs
		spawned, err := s.session.Tick(s.opts.StepMs)
		if err != nil {
			return result, err
		}
		for _, enemy := range spawned {
			if entityID, ok := s.session.EntityOf(enemy.ID); ok {
				s.field.Place(entityID, enemy)
			}
			result.Spawned++
			if enemy.IsBoss {
				result.Bosses++
			}
		}

		killed, leaked := s.field.Update(s.opts.StepMs/1000, towers)
		for _, id := range killed {
			s.session.ResolveEnemy(id)
		}
		for _, id := range leaked {
			s.session.ResolveEnemy(id)
		}
		result.Killed += len(killed)
		result.Leaked += len(leaked)

		done, err := s.session.TryCompleteWave(elapsed, towers)
		if err != nil {
			return result, err
		}
		if done {
			break
		}
	}

	tracker := s.session.Tracker()
	if samples := tracker.Samples(); len(samples) > 0 {
		result.SampleScore = samples[len(samples)-1].Score
	}
	result.CompletionMs = elapsed
	result.PerformanceScore = tracker.GetPerformanceScore()
	result.DifficultyModifier = tracker.GetAdaptiveDifficultyModifier()

	log.Printf("[Simulator] Wave %d: %d spawned (%d bosses), %d killed, %d leaked in %.1fs",
		wave, result.Spawned, result.Bosses, result.Killed, result.Leaked, elapsed/1000)
	return result, nil
}
