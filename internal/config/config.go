package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	General   GeneralConfig          `toml:"general"`
	Fetch     FetchConfig            `toml:"fetch"`
	Watch     WatchConfig            `toml:"watch"`
	Sources   map[string]SourceEntry `toml:"sources"`
	Questions []Question             `toml:"questions"`
}

type GeneralConfig struct {
	DBPath   string `toml:"db_path"`
	LogLevel string `toml:"log_level"`
}

type FetchConfig struct {
	Timeout   Duration `toml:"timeout"`
	RateRPS   float64  `toml:"rate_limit_rps"`
	RateBurst int      `toml:"rate_limit_burst"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

type WatchConfig struct {
	Interval Duration `toml:"interval"`
}

// SourceEntry names one upstream pair. The API key is read from the named
// environment variable at startup; Required makes a missing key fatal for
// sources that refuse unauthenticated requests.
type SourceEntry struct {
	PrimaryURL  string `toml:"primary_url"`
	FallbackURL string `toml:"fallback_url"`
	StartKey    string `toml:"start_key"`
	EndKey      string `toml:"end_key"`
	APIKeyEnv   string `toml:"api_key_env"`
	Required    bool   `toml:"api_key_required"`
}

// Question is one market question: which data point to fetch and how to
// classify it. Fields beyond id/kind/source/rule are rule-specific.
type Question struct {
	ID     string `toml:"id"`
	Kind   string `toml:"kind"` // "crypto" or "sports"
	Source string `toml:"source"`
	Rule   string `toml:"rule"` // threshold | open_close | two_point | winner

	// Crypto lookups.
	Symbol   string `toml:"symbol"`
	Interval string `toml:"interval"`
	Limit    int    `toml:"limit"`

	// Window: local wall clock plus IANA zone.
	Date     string   `toml:"date"`
	Time     string   `toml:"time"`
	Timezone string   `toml:"timezone"`
	Duration Duration `toml:"duration"`

	// Second point for two_point comparisons.
	DateB string `toml:"date_b"`
	TimeB string `toml:"time_b"`

	// Rule parameters.
	Field     string  `toml:"field"`     // threshold: high | low | close
	Threshold float64 `toml:"threshold"` // threshold level
	Direction string  `toml:"direction"` // at_or_above | at_or_below
	Tie       string  `toml:"tie"`       // open_close: up | down | split
	SideA     string  `toml:"side_a"`    // winner: team abbreviations
	SideB     string  `toml:"side_b"`

	// Verdict-to-code overrides; defaults cover the usual convention.
	Labels map[string]string `toml:"labels"`
}

// Duration wraps time.Duration for TOML unmarshaling.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DBPath:   "./data/verdict.db",
			LogLevel: "info",
		},
		Fetch: FetchConfig{
			Timeout:   Duration{10 * time.Second},
			RateRPS:   5,
			RateBurst: 2,
			CacheTTL:  Duration{5 * time.Minute},
		},
		Watch: WatchConfig{
			Interval: Duration{5 * time.Minute},
		},
		Sources: map[string]SourceEntry{},
	}
}

func (c *Config) validate() error {
	for name, src := range c.Sources {
		if src.PrimaryURL == "" {
			return fmt.Errorf("source %q: primary_url is required", name)
		}
	}

	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: id is required", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("question %q: duplicate id", q.ID)
		}
		seen[q.ID] = true

		if _, ok := c.Sources[q.Source]; !ok {
			return fmt.Errorf("question %q: unknown source %q", q.ID, q.Source)
		}
		switch q.Kind {
		case "crypto", "sports":
		default:
			return fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind)
		}
	}

	return nil
}

// APIKey resolves a source's key from the environment. A missing key is an
// error only when the source declares it required.
func (s SourceEntry) APIKey() (string, error) {
	if s.APIKeyEnv == "" {
		return "", nil
	}
	key := os.Getenv(s.APIKeyEnv)
	if key == "" && s.Required {
		return "", fmt.Errorf("required environment variable %s is not set", s.APIKeyEnv)
	}
	return key, nil
}
