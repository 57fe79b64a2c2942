package infra

import (
	"fmt"
	"os"
	"strconv"

	"courtside/internal/domain"

	"gopkg.in/yaml.v3"
)

// WeightPreset is the raw YAML form of a context weight triple.
type WeightPreset struct {
	Fundamental float64 `yaml:"fundamental"`
	Market      float64 `yaml:"market"`
	LiveEvents  float64 `yaml:"live_events"`
}

// PlayerSeed is one roster entry loaded at startup.
type PlayerSeed struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Team        string             `yaml:"team"`
	Position    string             `yaml:"position"`
	Price       float64            `yaml:"price"`
	TotalShares float64            `yaml:"total_shares"`
	Stats       domain.PlayerStats `yaml:"stats"`
}

// Config holds every application setting. Loaded once at startup; selected
// values may be overridden through environment variables afterwards.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		TickIntervalSec     int     `yaml:"tick_interval_sec"`
		StatRefreshSec      int     `yaml:"stat_refresh_sec"`
		BookRefreshSec      int     `yaml:"book_refresh_sec"`
		GameEventSec        int     `yaml:"game_event_sec"`
		Seed                int64   `yaml:"seed"` // 0 = derive from clock
		HistoryCapacity     int     `yaml:"history_capacity"`
		DefaultVolatility   float64 `yaml:"default_volatility"`
		VolatilityThreshold float64 `yaml:"volatility_threshold"`
		HaltDurationSec     int     `yaml:"halt_duration_sec"`
		MaxMovePct          float64 `yaml:"max_move_pct"`
		PriceFloor          float64 `yaml:"price_floor"`
		MinSpreadPct        float64 `yaml:"min_spread_pct"`
		MaxSpreadPct        float64 `yaml:"max_spread_pct"`
		ReversionFactor     float64 `yaml:"reversion_factor"`
		RandomWalkScale     float64 `yaml:"random_walk_scale"`
		MarketNoiseScale    float64 `yaml:"market_noise_scale"`
		SpeculativeNoise    float64 `yaml:"speculative_noise_scale"`
		VolumePressure      float64 `yaml:"volume_pressure_scale"`

		StatWeights struct {
			Points     float64 `yaml:"points"`
			Rebounds   float64 `yaml:"rebounds"`
			Assists    float64 `yaml:"assists"`
			Efficiency float64 `yaml:"efficiency"`
		} `yaml:"stat_weights"`

		Presets      map[string]WeightPreset `yaml:"presets"`       // keyed by context class name
		EventImpacts map[string]float64      `yaml:"event_impacts"` // keyed by event type
		OffSeason    []int                   `yaml:"off_season_months"`
		OpenHour     int                     `yaml:"market_open_hour"`
		CloseHour    int                     `yaml:"market_close_hour"`
	} `yaml:"market"`

	Roster []PlayerSeed `yaml:"roster"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Headshots struct {
		URLTemplate string `yaml:"url_template"` // %s = player id
		Dir         string `yaml:"dir"`
	} `yaml:"headshots"`

	Portfolio struct {
		StartingCash string `yaml:"starting_cash"`
	} `yaml:"portfolio"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the application-level settings. Engine invariants
// (weight sums, halt window) are validated again by the engine itself.
func (c *Config) Validate() error {
	if c.Market.TickIntervalSec <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if len(c.Roster) == 0 {
		return fmt.Errorf("at least one roster entry is required")
	}
	seen := make(map[string]bool, len(c.Roster))
	for _, seed := range c.Roster {
		if seed.ID == "" {
			return fmt.Errorf("roster entry %q has no id", seed.Name)
		}
		if seen[seed.ID] {
			return fmt.Errorf("duplicate roster id: %s", seed.ID)
		}
		seen[seed.ID] = true
		if seed.Price <= 0 {
			return fmt.Errorf("roster entry %s has non-positive price", seed.ID)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	return nil
}

// overrideWithEnv applies environment variable overrides when present.
func overrideWithEnv(cfg *Config) {
	if path := os.Getenv("COURTSIDE_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if addr := os.Getenv("COURTSIDE_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("COURTSIDE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if seed := os.Getenv("COURTSIDE_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Market.Seed = v
		}
	}
}
