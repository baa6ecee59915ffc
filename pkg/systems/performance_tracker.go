package systems

import (
	"log"
	"math"
	"sync"

	"github.com/decker502/wavespawn/pkg/utils"
)

// 表现追踪常量
const (
	// PerformanceHistoryCapacity 历史记录容量，超出时淘汰最旧的记录
	PerformanceHistoryCapacity = 10

	// PerformanceScoreWindow 计算表现分时使用的最近样本数
	PerformanceScoreWindow = 5

	// DefaultPerformanceScore 无历史记录时的表现分
	DefaultPerformanceScore = 0.5

	// MinDifficultyModifier / MaxDifficultyModifier 难度系数范围
	MinDifficultyModifier = 0.7
	MaxDifficultyModifier = 1.3

	// 期望完成时间: 15000 + wave*2000 (毫秒)
	baseExpectedTimeMs    = 15000.0
	expectedTimePerWaveMs = 2000.0

	// 期望塔数: min(8, 2 + floor(wave/3))
	baseExpectedTowers = 2
	maxExpectedTowers  = 8

	timeScoreWeight       = 0.6
	efficiencyScoreWeight = 0.4
)

// PerformanceSample 一次波次完成的表现记录（创建后不可变）
type PerformanceSample struct {
	Wave             int     `json:"wave"`
	CompletionTimeMs float64 `json:"completionTimeMs"`
	TowersUsed       int     `json:"towersUsed"`
	Score            float64 `json:"score"` // [0,1]
}

// DifficultySource 生成策略依赖的两个表现查询操作
type DifficultySource interface {
	GetPerformanceScore() float64
	GetAdaptiveDifficultyModifier() float64
}

// PerformanceTracker 玩家表现追踪器
//
// 维护最近 10 次波次结果的环形缓冲区，并由此推导表现分和难度系数。
// 读写由内部读写锁串行化，调试服务器可以在其他 goroutine 中读取。
type PerformanceTracker struct {
	mu      sync.RWMutex
	samples [PerformanceHistoryCapacity]PerformanceSample
	head    int // 最旧样本的下标
	count   int
}

// NewPerformanceTracker 创建空的表现追踪器
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{}
}

// TrackPlayerPerformance 记录一次波次完成
//
// 参数：
//
//	wave - 完成的波次号
//	completionTimeMs - 完成耗时（毫秒）
//	towersUsed - 本波使用的塔数
//
// 返回：
//
//	追加到历史中的样本
func (p *PerformanceTracker) TrackPlayerPerformance(wave int, completionTimeMs float64, towersUsed int) PerformanceSample {
	sample := PerformanceSample{
		Wave:             wave,
		CompletionTimeMs: completionTimeMs,
		TowersUsed:       towersUsed,
		Score:            CalculateSampleScore(wave, completionTimeMs, towersUsed),
	}

	p.mu.Lock()
	if p.count == PerformanceHistoryCapacity {
		// 已满：覆盖最旧的记录
		p.samples[p.head] = sample
		p.head = (p.head + 1) % PerformanceHistoryCapacity
	} else {
		p.samples[(p.head+p.count)%PerformanceHistoryCapacity] = sample
		p.count++
	}
	p.mu.Unlock()

	log.Printf("[PerformanceTracker] Wave %d completed in %.0fms with %d towers: score=%.3f",
		wave, completionTimeMs, towersUsed, sample.Score)

	return sample
}

// GetPerformanceScore 最近 5 个样本得分的算术平均值，限制在 [0,1]
// 无历史记录时返回 0.5
func (p *PerformanceTracker) GetPerformanceScore() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scoreLocked()
}

func (p *PerformanceTracker) scoreLocked() float64 {
	if p.count == 0 {
		return DefaultPerformanceScore
	}

	n := p.count
	if n > PerformanceScoreWindow {
		n = PerformanceScoreWindow
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		idx := (p.head + p.count - 1 - i) % PerformanceHistoryCapacity
		sum += p.samples[idx].Score
	}
	return utils.ClampFloat(sum/float64(n), 0, 1)
}

// GetAdaptiveDifficultyModifier 当前表现分对应的难度系数 [0.7, 1.3]
func (p *PerformanceTracker) GetAdaptiveDifficultyModifier() float64 {
	return DifficultyModifierForScore(p.GetPerformanceScore())
}

// Samples 返回历史样本副本（从旧到新）
func (p *PerformanceTracker) Samples() []PerformanceSample {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]PerformanceSample, p.count)
	for i := 0; i < p.count; i++ {
		result[i] = p.samples[(p.head+i)%PerformanceHistoryCapacity]
	}
	return result
}

// Len 当前历史记录数
func (p *PerformanceTracker) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.count
}

// Reset 清空历史记录（新会话开始时使用）
func (p *PerformanceTracker) Reset() {
	p.mu.Lock()
	p.head = 0
	p.count = 0
	p.mu.Unlock()
}

// DifficultyModifierForScore 将表现分映射为难度系数
//
// 三段连续的线性函数：
//   - score < 0.3:        0.7 + (score/0.3)*0.2        → [0.7, 0.9)
//   - 0.3 <= score < 0.7: 0.9 + ((score-0.3)/0.4)*0.2  → [0.9, 1.1)
//   - score >= 0.7:       1.1 + ((score-0.7)/0.3)*0.2  → [1.1, 1.3]
//
// 在 0.3 和 0.7 处连续，整体单调不减
func DifficultyModifierForScore(score float64) float64 {
	if math.IsNaN(score) {
		score = DefaultPerformanceScore
	}
	score = utils.ClampFloat(score, 0, 1)

	var modifier float64
	switch {
	case score < 0.3:
		modifier = 0.7 + (score/0.3)*0.2
	case score < 0.7:
		modifier = 0.9 + ((score-0.3)/0.4)*0.2
	default:
		modifier = 1.1 + ((score-0.7)/0.3)*0.2
	}
	return utils.ClampFloat(modifier, MinDifficultyModifier, MaxDifficultyModifier)
}

// CalculateSampleScore 计算单次波次的表现分
//
// 公式: score = 0.6*timeScore + 0.4*efficiencyScore
//   - timeScore = clamp(expectedTime/completionTime, 0, 1)，expectedTime = 15000 + wave*2000
//   - efficiencyScore = clamp(expectedTowers/towersUsed, 0, 1)，expectedTowers = min(8, 2 + floor(wave/3))
//
// 非正的耗时或塔数视为满分（数据异常就地修正，不向上传播）
func CalculateSampleScore(wave int, completionTimeMs float64, towersUsed int) float64 {
	if wave < 0 {
		wave = 0
	}

	expectedTime := baseExpectedTimeMs + float64(wave)*expectedTimePerWaveMs
	timeScore := 1.0
	if completionTimeMs > 0 && !math.IsNaN(completionTimeMs) {
		timeScore = utils.ClampFloat(expectedTime/completionTimeMs, 0, 1)
	}

	expectedTowers := baseExpectedTowers + wave/3
	if expectedTowers > maxExpectedTowers {
		expectedTowers = maxExpectedTowers
	}
	efficiencyScore := 1.0
	if towersUsed > 0 {
		efficiencyScore = utils.ClampFloat(float64(expectedTowers)/float64(towersUsed), 0, 1)
	}

	return utils.ClampFloat(timeScoreWeight*timeScore+efficiencyScoreWeight*efficiencyScore, 0, 1)
}
