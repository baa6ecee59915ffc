package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEnemyStats(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("加载有效配置文件", func(t *testing.T) {
		configContent := `
enemies:
  grunt:
    baseHealth: 100
    baseSpeed: 1.0
    goldReward: 5
  warlord:
    baseHealth: 600
    baseSpeed: 0.7
    goldReward: 40
`
		configPath := filepath.Join(tempDir, "enemy_stats.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		config, err := LoadEnemyStats(configPath)
		if err != nil {
			t.Fatalf("LoadEnemyStats failed: %v", err)
		}
		if len(config.Enemies) != 2 {
			t.Errorf("Expected 2 enemy types, got %d", len(config.Enemies))
		}

		warlord, ok := config.GetEnemyStats("warlord")
		if !ok {
			t.Fatal("warlord not found")
		}
		if warlord.BaseHealth != 600 || warlord.BaseSpeed != 0.7 || warlord.GoldReward != 40 {
			t.Errorf("unexpected warlord stats: %+v", warlord)
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		if _, err := LoadEnemyStats(filepath.Join(tempDir, "missing.yaml")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

func TestParseEnemyStats_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		errContains string
	}{
		{"空配置", "enemies: {}\n", "at least one enemy type is required"},
		{"血量为零", "enemies:\n  grunt: { baseHealth: 0, baseSpeed: 1 }\n", "baseHealth must be positive"},
		{"速度为负", "enemies:\n  grunt: { baseHealth: 10, baseSpeed: -1 }\n", "baseSpeed must be positive"},
		{"金币为负", "enemies:\n  grunt: { baseHealth: 10, baseSpeed: 1, goldReward: -2 }\n", "goldReward cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnemyStats([]byte(tt.yamlContent))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %v", tt.errContains, err)
			}
		})
	}
}

func TestGetEnemyStats_Default(t *testing.T) {
	config := &EnemyStatsConfig{Enemies: map[string]EnemyStats{
		"grunt": {BaseHealth: 100, BaseSpeed: 1, GoldReward: 5},
	}}

	stats, ok := config.GetEnemyStats("unknown")
	if ok {
		t.Error("expected ok = false for unknown type")
	}
	if stats != DefaultEnemyStats {
		t.Errorf("expected DefaultEnemyStats, got %+v", stats)
	}

	var nilConfig *EnemyStatsConfig
	if stats, ok := nilConfig.GetEnemyStats("grunt"); ok || stats != DefaultEnemyStats {
		t.Errorf("nil config: expected defaults, got %+v ok=%v", stats, ok)
	}
}
