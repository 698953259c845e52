
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the whole runtime configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	HTTP       HTTPConfig       `yaml:"http"`
	Collection CollectionConfig `yaml:"collection"`
	NATS       NATSConfig       `yaml:"nats"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// StorageConfig selects the snapshot backend: "file" or "postgres".
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	DSN     string `yaml:"dsn"`
}

type CacheConfig struct {
	Freshness time.Duration `yaml:"freshness"`
}

type HTTPConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	SizeCap     int64         `yaml:"size_cap"`
	RPS         float64       `yaml:"rps"`
	Burst       int           `yaml:"burst"`
	// UserAgent replaces the default desktop browser string when set.
	UserAgent string `yaml:"user_agent"`
}

type DelayConfig struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

type CollectionConfig struct {
	// Sources are provider names in visiting order: naver, daum, yonhap.
	Sources       []string    `yaml:"sources"`
	NewsPages     int         `yaml:"news_pages"`
	BlogPages     int         `yaml:"blog_pages"`
	SeedCount     int         `yaml:"seed_count"`
	PageDelay     DelayConfig `yaml:"page_delay"`
	KeywordDelay  DelayConfig `yaml:"keyword_delay"`
	Background    bool        `yaml:"background"`
	IntervalHours int         `yaml:"interval_hours"`
}

// NATSConfig enables snapshot events when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080"},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{Backend: "file", Dir: "data"},
		Cache:   CacheConfig{Freshness: time.Hour},
		HTTP: HTTPConfig{
			Timeout:     15 * time.Second,
			DialTimeout: 5 * time.Second,
			SizeCap:     5 * 1024 * 1024,
			RPS:         2,
			Burst:       1,
		},
		Collection: CollectionConfig{
			Sources:       []string{"naver", "daum"},
			NewsPages:     2,
			BlogPages:     1,
			SeedCount:     5,
			PageDelay:     DelayConfig{Min: time.Second, Max: 2 * time.Second},
			KeywordDelay:  DelayConfig{Min: 2 * time.Second, Max: 3 * time.Second},
			IntervalHours: 3,
		},
		NATS: NATSConfig{Subject: "trends.snapshot.committed"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path falls back to TREND_CONFIG; if that is empty too, only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("TREND_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = envOrDefault("PORT", cfg.Server.Port)
	cfg.Storage.Dir = envOrDefault("TREND_DATA_DIR", cfg.Storage.Dir)
	cfg.Log.Level = envOrDefault("TREND_LOG_LEVEL", cfg.Log.Level)
	cfg.Storage.DSN = envOrDefault("TREND_POSTGRES_DSN", cfg.Storage.DSN)
	cfg.NATS.URL = envOrDefault("TREND_NATS_URL", cfg.NATS.URL)
	if v := os.Getenv("TREND_INTERVAL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Collection.IntervalHours = n
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("storage.dir is required for the file backend"))
		}
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of file, postgres", c.Storage.Backend))
	}
	if c.Cache.Freshness < 0 {
		errs = append(errs, errors.New("cache.freshness must not be negative"))
	}
	if c.HTTP.SizeCap <= 0 {
		errs = append(errs, errors.New("http.size_cap must be positive"))
	}
	col := c.Collection
	if len(col.Sources) == 0 {
		errs = append(errs, errors.New("collection.sources must not be empty"))
	}
	for _, s := range col.Sources {
		switch s {
		case "naver", "daum", "yonhap":
		default:
			errs = append(errs, fmt.Errorf("collection.sources: unknown source %q", s))
		}
	}
	if col.NewsPages < 1 || col.BlogPages < 1 || col.SeedCount < 1 {
		errs = append(errs, errors.New("collection.news_pages, blog_pages and seed_count must be at least 1"))
	}
	if col.PageDelay.Min > col.PageDelay.Max || col.KeywordDelay.Min > col.KeywordDelay.Max {
		errs = append(errs, errors.New("collection delays need min <= max"))
	}
	if col.IntervalHours < 1 {
		errs = append(errs, errors.New("collection.interval_hours must be at least 1"))
	}
	return errors.Join(errs...)
}
