package game

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/decker502/wavespawn/pkg/config"
	"github.com/decker502/wavespawn/pkg/embedded"
	"github.com/decker502/wavespawn/pkg/systems"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const sessionTestYAML = `
minSpawnDelayMs: 100
waves:
  - fromWave: 1
    toWave: 1
    baseSpawnRate: 500
    maxEnemiesPerWave: 2
    enemyComposition:
      - type: grunt
        weight: 1
  - fromWave: 2
    baseSpawnRate: 400
    maxEnemiesPerWave: 3
    enemyComposition:
      - type: grunt
        weight: 1
      - type: runner
        weight: 1
        minWave: 2
`

func newTestSession(t *testing.T, reg prometheus.Registerer) *Session {
	t.Helper()

	waveConfig, err := config.ParseWaveSpawnConfig([]byte(sessionTestYAML))
	if err != nil {
		t.Fatalf("ParseWaveSpawnConfig failed: %v", err)
	}
	session, err := NewSession(SessionOptions{WaveConfig: waveConfig, Seed: 42, Registerer: reg})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return session
}

// spawnAll 推进时间直到本波全部生成
func spawnAll(t *testing.T, session *Session) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if _, err := session.Tick(100); err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if session.State() == systems.SpawnStateDraining {
			return
		}
	}
	t.Fatal("wave never finished spawning")
}

func TestNewSession_RequiresWaveConfig(t *testing.T) {
	if _, err := NewSession(SessionOptions{}); err == nil {
		t.Error("Expected error for missing wave config")
	}
}

func TestSession_WaveCycle(t *testing.T) {
	session := newTestSession(t, nil)

	wave, err := session.StartNextWave()
	if err != nil || wave != 1 {
		t.Fatalf("StartNextWave: wave=%d err=%v", wave, err)
	}

	spawnAll(t, session)

	// 场上还有敌人时不能完成
	done, err := session.TryCompleteWave(20000, 2)
	if err != nil || done {
		t.Fatalf("Expected wave to stay open while enemies remain, done=%v err=%v", done, err)
	}

	for _, enemy := range session.ActiveEnemies() {
		if !session.ResolveEnemy(enemy.ID) {
			t.Fatalf("ResolveEnemy(%s) failed", enemy.ID)
		}
	}

	done, err = session.TryCompleteWave(20000, 2)
	if err != nil || !done {
		t.Fatalf("Expected wave completion, done=%v err=%v", done, err)
	}

	status := session.Status()
	if status.State != "Idle" || status.Wave != 1 || len(status.History) != 1 {
		t.Errorf("unexpected status after completion: %+v", status)
	}

	wave, err = session.StartNextWave()
	if err != nil || wave != 2 {
		t.Fatalf("StartNextWave: wave=%d err=%v", wave, err)
	}
	if session.CurrentWave() != 2 {
		t.Errorf("Expected current wave 2, got %d", session.CurrentWave())
	}
}

func TestSession_StartNextWaveWhileActive(t *testing.T) {
	session := newTestSession(t, nil)
	if _, err := session.StartNextWave(); err != nil {
		t.Fatalf("StartNextWave failed: %v", err)
	}

	wave, err := session.StartNextWave()
	if !errors.Is(err, systems.ErrWaveInProgress) {
		t.Errorf("Expected ErrWaveInProgress, got %v", err)
	}
	if wave != 1 || session.CurrentWave() != 1 {
		t.Errorf("current wave must stay 1, got %d/%d", wave, session.CurrentWave())
	}
}

func TestSession_AbortWave(t *testing.T) {
	session := newTestSession(t, nil)
	if session.AbortWave() {
		t.Error("AbortWave should be false without an active wave")
	}

	if _, err := session.StartNextWave(); err != nil {
		t.Fatalf("StartNextWave failed: %v", err)
	}
	if _, err := session.Tick(600); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if len(session.ActiveEnemies()) == 0 {
		t.Fatal("expected a spawned enemy")
	}

	if !session.AbortWave() {
		t.Fatal("AbortWave should succeed")
	}
	if len(session.ActiveEnemies()) != 0 {
		t.Error("abort must clear the field")
	}
	if session.Tracker().Len() != 0 {
		t.Error("aborted wave must not be tracked")
	}
}

func TestSession_PauseResume(t *testing.T) {
	session := newTestSession(t, nil)
	if _, err := session.StartNextWave(); err != nil {
		t.Fatalf("StartNextWave failed: %v", err)
	}

	session.Pause()
	spawned, err := session.Tick(5000)
	if err != nil || len(spawned) != 0 {
		t.Fatalf("Expected no spawns while paused, got %d (err=%v)", len(spawned), err)
	}
	if !session.Status().Run.IsPaused {
		t.Error("status should report paused")
	}

	session.Resume()
	spawned, err = session.Tick(5000)
	if err != nil || len(spawned) != 2 {
		t.Errorf("Expected 2 spawns after resume, got %d (err=%v)", len(spawned), err)
	}
}

func TestSession_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	session := newTestSession(t, reg)

	if _, err := session.StartNextWave(); err != nil {
		t.Fatalf("StartNextWave failed: %v", err)
	}
	spawnAll(t, session)

	count, err := testutil.GatherAndCount(reg, "wavespawn_waves_started_total")
	if err != nil {
		t.Fatalf("GatherAndCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected waves_started metric to be registered, got %d series", count)
	}
	if got := testutil.ToFloat64(session.metrics.EnemiesSpawned.WithLabelValues("grunt")); got != 2 {
		t.Errorf("Expected 2 grunts spawned, got %v", got)
	}
}

func TestNewDefaultSession(t *testing.T) {
	waveYAML := []byte(sessionTestYAML)
	statsYAML := []byte(`
enemies:
  grunt:
    baseHealth: 120
    baseSpeed: 1
    goldReward: 5
`)
	embedded.Init(fstest.MapFS{
		config.DefaultWaveSpawnConfigPath: {Data: waveYAML},
		config.DefaultEnemyStatsPath:      {Data: statsYAML},
	})
	t.Cleanup(func() { embedded.Init(nil) })

	session, err := NewDefaultSession(7, nil)
	if err != nil {
		t.Fatalf("NewDefaultSession failed: %v", err)
	}
	if _, err := session.StartNextWave(); err != nil {
		t.Fatalf("StartNextWave failed: %v", err)
	}
	spawned, err := session.Tick(600)
	if err != nil || len(spawned) != 1 {
		t.Fatalf("Expected 1 spawn, got %d (err=%v)", len(spawned), err)
	}
	// 第1波不缩放，难度系数为默认值附近
	if spawned[0].Health < 119 || spawned[0].Health > 121 {
		t.Errorf("Expected health from embedded stats (~120), got %.2f", spawned[0].Health)
	}
}

func TestNewDefaultSession_WithoutEnemyStats(t *testing.T) {
	embedded.Init(fstest.MapFS{
		config.DefaultWaveSpawnConfigPath: {Data: []byte(sessionTestYAML)},
	})
	t.Cleanup(func() { embedded.Init(nil) })

	session, err := NewDefaultSession(7, nil)
	if err != nil {
		t.Fatalf("NewDefaultSession failed: %v", err)
	}
	if _, err := session.StartNextWave(); err != nil {
		t.Fatalf("StartNextWave failed: %v", err)
	}
	spawned, err := session.Tick(600)
	if err != nil || len(spawned) != 1 {
		t.Fatalf("Expected 1 spawn, got %d (err=%v)", len(spawned), err)
	}
	if spawned[0].Speed != config.DefaultEnemyStats.BaseSpeed {
		t.Errorf("Expected default speed %.2f, got %.2f", config.DefaultEnemyStats.BaseSpeed, spawned[0].Speed)
	}
}
