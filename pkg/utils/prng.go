package utils

import (
	"math/rand"
	"time"
)

// RandomSource 随机数来源
//
// *rand.Rand 直接满足该接口。生成策略通过它注入随机数，
// 测试中传入固定种子即可断言确定的结果。
type RandomSource interface {
	// Float64 返回 [0.0, 1.0) 的随机数
	Float64() float64
	// Intn 返回 [0, n) 的随机整数，n <= 0 时会 panic（与 math/rand 一致）
	Intn(n int) int
}

// NewSeededRandom 创建带种子的随机数来源
// seed 为 0 时使用当前时间作为种子
func NewSeededRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ChooseWeighted 按权重随机选择一个下标
//
// 使用累积和方式：在 [0, totalWeight) 中取随机数，返回累积权重首次超过它的下标。
// 负权重按 0 处理；总权重 <= 0 或列表为空时返回 -1，由调用方决定回退策略。
func ChooseWeighted(rng RandomSource, weights []float64) int {
	totalWeight := 0.0
	for _, w := range weights {
		if w > 0 {
			totalWeight += w
		}
	}
	if totalWeight <= 0 {
		return -1
	}

	randNum := rng.Float64() * totalWeight
	cumulativeWeight := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulativeWeight += w
		last = i
		if randNum < cumulativeWeight {
			return i
		}
	}

	// 浮点误差导致未命中时返回最后一个有效项
	return last
}

// ClampFloat 将 v 限制在 [min, max] 区间
func ClampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
