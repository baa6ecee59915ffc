package game

import (
	"context"
	"errors"
	"testing"

	"github.com/decker502/wavespawn/pkg/systems"
)

// fastField 敌人很快进入防线
var fastField = systems.LanePreviewConfig{
	LaneCount:     3,
	LaneHeight:    10,
	SpawnX:        100,
	EndX:          0,
	DefenseX:      90,
	PixelsPerUnit: 100,
	TowerDPS:      1000,
}

func TestPlayerModel_TowersFor(t *testing.T) {
	player := PlayerModel{BaseTowers: 2, TowersEvery: 3, MaxTowers: 5}

	tests := []struct {
		name     string
		wave     int
		expected int
	}{
		{"第1波", 1, 2},
		{"第3波尚未增加", 3, 2},
		{"第4波增加一座", 4, 3},
		{"第10波", 10, 5},
		{"达到上限", 30, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := player.TowersFor(tt.wave); got != tt.expected {
				t.Errorf("Expected %d towers, got %d", tt.expected, got)
			}
		})
	}

	if got := (PlayerModel{BaseTowers: 4}).TowersFor(50); got != 4 {
		t.Errorf("Expected constant 4 towers without growth, got %d", got)
	}
}

func TestSimulator_StrongPlayer(t *testing.T) {
	session := newTestSession(t, nil)
	sim := NewSimulator(session, SimulationOptions{
		Waves:  3,
		StepMs: 100,
		Player: PlayerModel{BaseTowers: 3},
		Field:  fastField,
	})

	var seen []int
	results, err := sim.Run(context.Background(), func(r WaveResult) {
		seen = append(seen, r.Wave)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != 3 || len(seen) != 3 {
		t.Fatalf("Expected 3 wave results, got %d (callbacks %d)", len(results), len(seen))
	}
	for i, r := range results {
		if r.Wave != i+1 {
			t.Errorf("Result %d: expected wave %d, got %d", i, i+1, r.Wave)
		}
		if r.Leaked != 0 || r.Killed != r.Spawned {
			t.Errorf("Wave %d: expected all enemies killed, got %+v", r.Wave, r)
		}
		if r.CompletionMs <= 0 {
			t.Errorf("Wave %d: completion time not recorded", r.Wave)
		}
	}
	if results[0].Spawned != 2 || results[1].Spawned != 3 {
		t.Errorf("unexpected spawn counts: %d, %d", results[0].Spawned, results[1].Spawned)
	}
	if session.Tracker().Len() != 3 {
		t.Errorf("Expected 3 tracked waves, got %d", session.Tracker().Len())
	}
	// 快速清场，表现分高于默认值
	if results[2].PerformanceScore <= systems.DefaultPerformanceScore {
		t.Errorf("Expected performance above default, got %.3f", results[2].PerformanceScore)
	}
}

func TestSimulator_NoDefenseLeaksEverything(t *testing.T) {
	session := newTestSession(t, nil)
	field := fastField
	field.TowerDPS = 0
	sim := NewSimulator(session, SimulationOptions{Waves: 1, StepMs: 100, Field: field})

	result, err := sim.RunWave(context.Background())
	if err != nil {
		t.Fatalf("RunWave failed: %v", err)
	}
	if result.Leaked != result.Spawned || result.Killed != 0 {
		t.Errorf("Expected every enemy to leak, got %+v", result)
	}
}

func TestSimulator_Timeout(t *testing.T) {
	session := newTestSession(t, nil)
	field := fastField
	field.PixelsPerUnit = 0 // 敌人不动，波次永远无法完成
	sim := NewSimulator(session, SimulationOptions{Waves: 1, StepMs: 100, MaxWaveMs: 2000, Field: field})

	_, err := sim.RunWave(context.Background())
	if !errors.Is(err, ErrWaveTimeout) {
		t.Fatalf("Expected ErrWaveTimeout, got %v", err)
	}
	if session.State() != systems.SpawnStateIdle {
		t.Errorf("timed out wave should be aborted, state=%s", session.State())
	}
	if len(session.ActiveEnemies()) != 0 {
		t.Error("aborted wave should clear the field")
	}
}

func TestSimulator_Cancelled(t *testing.T) {
	session := newTestSession(t, nil)
	sim := NewSimulator(session, SimulationOptions{Waves: 5, StepMs: 100, Field: fastField})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := sim.Run(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no completed waves, got %d", len(results))
	}
}
