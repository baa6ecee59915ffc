package systems

import (
	"testing"

	"github.com/decker502/wavespawn/pkg/config"
)

// scriptedRandom 按顺序返回预设值的随机源，用完后重复最后一个值
type scriptedRandom struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[r.fi]
	if r.fi < len(r.floats)-1 {
		r.fi++
	}
	return v
}

func (r *scriptedRandom) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ii]
	if r.ii < len(r.ints)-1 {
		r.ii++
	}
	return v % n
}

// fixedDifficulty 固定表现分和难度系数的 DifficultySource
type fixedDifficulty struct {
	score    float64
	modifier float64
}

func (d fixedDifficulty) GetPerformanceScore() float64          { return d.score }
func (d fixedDifficulty) GetAdaptiveDifficultyModifier() float64 { return d.modifier }

func newTestRegistry(t *testing.T, yamlContent string) *config.WaveConfigRegistry {
	t.Helper()

	file, err := config.ParseWaveSpawnConfig([]byte(yamlContent))
	if err != nil {
		t.Fatalf("ParseWaveSpawnConfig failed: %v", err)
	}
	registry, err := config.NewWaveConfigRegistry(file)
	if err != nil {
		t.Fatalf("NewWaveConfigRegistry failed: %v", err)
	}
	return registry
}

const strategyTestYAML = `
minSpawnDelayMs: 300
waves:
  - fromWave: 1
    toWave: 4
    baseSpawnRate: 2000
    spawnRateAcceleration: 100
    maxEnemiesPerWave: 10
    enemyComposition:
      - type: grunt
        weight: 3
        minWave: 1
      - type: runner
        weight: 1
        minWave: 2
        maxConcurrent: 2
      - type: brute
        weight: 1
        minWave: 3
        maxConcurrent: 1
    difficultyModifiers:
      performanceThreshold: 0.8
      adaptiveSpawnModifier: 1.5
      healthScalingFactor: 1.1
      speedScalingFactor: 1.02
  - fromWave: 5
    baseSpawnRate: 1500
    spawnRateAcceleration: 50
    maxEnemiesPerWave: 20
    enemyComposition:
      - type: grunt
        weight: 1
        minWave: 1
    bossConfig:
      spawnChance: 0.25
      minWave: 6
      bossTypes: [warlord, behemoth]
      healthMultiplier: 5
      speedMultiplier: 0.5
      goldMultiplier: 10
    difficultyModifiers:
      healthScalingFactor: 1.2
`
