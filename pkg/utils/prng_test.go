package utils

import "testing"

// fixedRandom 返回预设序列的随机数来源
type fixedRandom struct {
	floats []float64
	next   int
}

func (f *fixedRandom) Float64() float64 {
	v := f.floats[f.next%len(f.floats)]
	f.next++
	return v
}

func (f *fixedRandom) Intn(n int) int {
	return int(f.Float64() * float64(n))
}

func TestNewSeededRandom_Deterministic(t *testing.T) {
	a := NewSeededRandom(42)
	b := NewSeededRandom(42)

	for i := 0; i < 10; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("step %d: same seed produced %v and %v", i, x, y)
		}
	}
}

func TestChooseWeighted(t *testing.T) {
	weights := []float64{1, 0, 3} // 累积：[0,1) -> 0, [1,4) -> 2

	tests := []struct {
		name string
		roll float64
		want int
	}{
		{"落在第一项", 0.0, 0},
		{"第一项边界内", 0.24, 0},
		{"跳过零权重落在第三项", 0.25, 2},
		{"最大值", 0.999, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &fixedRandom{floats: []float64{tt.roll}}
			if got := ChooseWeighted(rng, weights); got != tt.want {
				t.Errorf("ChooseWeighted(roll=%v) = %d, want %d", tt.roll, got, tt.want)
			}
		})
	}
}

func TestChooseWeighted_NoWeight(t *testing.T) {
	rng := &fixedRandom{floats: []float64{0.5}}

	if got := ChooseWeighted(rng, nil); got != -1 {
		t.Errorf("empty weights: expected -1, got %d", got)
	}
	if got := ChooseWeighted(rng, []float64{0, -2}); got != -1 {
		t.Errorf("non-positive weights: expected -1, got %d", got)
	}
}

func TestChooseWeighted_Distribution(t *testing.T) {
	rng := NewSeededRandom(7)
	weights := []float64{1, 3}
	counts := make([]int, 2)

	const rolls = 20000
	for i := 0; i < rolls; i++ {
		counts[ChooseWeighted(rng, weights)]++
	}

	ratio := float64(counts[1]) / rolls
	if ratio < 0.72 || ratio > 0.78 {
		t.Errorf("expected ~75%% for weight 3 of 4, got %.3f", ratio)
	}
}

func TestClampFloat(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{-1, 0, 1, 0},
		{0.5, 0, 1, 0.5},
		{2, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := ClampFloat(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("ClampFloat(%v, %v, %v) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}
