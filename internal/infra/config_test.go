package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"courtside/internal/domain"
)

const testYAML = `
app:
  name: "courtside"
market:
  tick_interval_sec: 30
  seed: 7
roster:
  - id: "p1"
    name: "Player One"
    team: "TST"
    position: "PG"
    price: 100.0
    total_shares: 1000
    stats: { ppg: 20.0, rpg: 5.0, apg: 4.0, fg_pct: 0.45, games_played: 50 }
server:
  addr: ":8080"
storage:
  path: "data/test.db"
logging:
  level: "debug"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Market.TickIntervalSec != 30 {
		t.Errorf("expected tick interval 30, got %d", cfg.Market.TickIntervalSec)
	}
	if cfg.Market.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Market.Seed)
	}
	if len(cfg.Roster) != 1 {
		t.Fatalf("expected 1 roster entry, got %d", len(cfg.Roster))
	}
	if cfg.Roster[0].Stats.PointsPerGame != 20.0 {
		t.Errorf("expected ppg 20, got %v", cfg.Roster[0].Stats.PointsPerGame)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("COURTSIDE_DB_PATH", "/tmp/override.db")
	t.Setenv("COURTSIDE_LOG_LEVEL", "warn")
	t.Setenv("COURTSIDE_SEED", "99")

	cfg, err := LoadConfig(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Storage.Path != "/tmp/override.db" {
		t.Errorf("expected DB path override, got %s", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level override, got %s", cfg.Logging.Level)
	}
	if cfg.Market.Seed != 99 {
		t.Errorf("expected seed override 99, got %d", cfg.Market.Seed)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick interval", func(c *Config) { c.Market.TickIntervalSec = 0 }},
		{"empty roster", func(c *Config) { c.Roster = nil }},
		{"duplicate roster id", func(c *Config) { c.Roster = append(c.Roster, c.Roster[0]) }},
		{"non-positive price", func(c *Config) { c.Roster[0].Price = 0 }},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeTestConfig(t, testYAML))
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
