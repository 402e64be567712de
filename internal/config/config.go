package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Ads      AdsConfig      `yaml:"ads"`
	Bidding  BiddingConfig  `yaml:"bidding"`
	Purposes PurposesConfig `yaml:"purposes"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL                string `yaml:"url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds Redis connection settings. Redis is optional: without it
// the bid recommendation cache is skipped and locking falls back to
// PostgreSQL advisory locks.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AdsConfig holds advertising platform account settings.
type AdsConfig struct {
	ProfileID   string `yaml:"profile_id"`
	Marketplace string `yaml:"marketplace"`
	DryRun      bool   `yaml:"dry_run"`
}

// BiddingConfig holds bid defaults and clamps.
type BiddingConfig struct {
	DefaultBid float64 `yaml:"default_bid"`
	MinBid     float64 `yaml:"min_bid"`
	MaxBid     float64 `yaml:"max_bid"`

	// Top-of-search multiplier (percent) applied by single-keyword
	// strategies.
	SingleTOSPercent int `yaml:"single_tos_percent"`

	// Daily budget assigned to newly created campaigns.
	DailyBudget float64 `yaml:"daily_budget"`

	// How long bid recommendations stay cached in Redis.
	RecommendationTTLMinutes int `yaml:"recommendation_ttl_minutes"`
}

// PurposesConfig bounds campaign sizes per purpose.
type PurposesConfig struct {
	// MaxTargets caps keywords/targets per campaign, keyed by purpose tag.
	MaxTargets map[string]int `yaml:"max_targets"`
}

// WorkerConfig holds creation worker settings.
type WorkerConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	LockTTLSeconds      int `yaml:"lock_ttl_seconds"`
	SyncWaitSeconds     int `yaml:"sync_wait_seconds"`
	SyncPollSeconds     int `yaml:"sync_poll_seconds"`
}

// PollInterval returns the worker poll interval as a duration.
func (w WorkerConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalSeconds) * time.Second
}

// LockTTL returns the distributed lock TTL as a duration.
func (w WorkerConfig) LockTTL() time.Duration {
	return time.Duration(w.LockTTLSeconds) * time.Second
}

// SyncWait returns the target-sync polling deadline as a duration.
func (w WorkerConfig) SyncWait() time.Duration {
	return time.Duration(w.SyncWaitSeconds) * time.Second
}

// SyncPoll returns the target-sync polling interval as a duration.
func (w WorkerConfig) SyncPoll() time.Duration {
	return time.Duration(w.SyncPollSeconds) * time.Second
}

// RecommendationTTL returns the bid recommendation cache TTL as a duration.
func (b BiddingConfig) RecommendationTTL() time.Duration {
	return time.Duration(b.RecommendationTTLMinutes) * time.Minute
}

// MaxTargetsFor returns the per-campaign target cap for a purpose,
// falling back to 50 when the purpose has no explicit cap.
func (p PurposesConfig) MaxTargetsFor(purpose string) int {
	if n, ok := p.MaxTargets[purpose]; ok && n > 0 {
		return n
	}
	return 50
}

// Load reads the config file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadFromEnv loads the config file, then overrides secrets and connection
// strings from the environment (including a .env file if present). A missing
// config file is not an error: defaults plus environment are enough to run.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = &Config{}
		applyDefaults(cfg)
	} else if err != nil {
		return nil, err
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if profile := os.Getenv("ADS_PROFILE_ID"); profile != "" {
		cfg.Ads.ProfileID = profile
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMin == 0 {
		cfg.Database.ConnMaxLifetimeMin = 5
	}
	if cfg.Ads.Marketplace == "" {
		cfg.Ads.Marketplace = "US"
	}
	if cfg.Bidding.DefaultBid == 0 {
		cfg.Bidding.DefaultBid = 0.50
	}
	if cfg.Bidding.MinBid == 0 {
		cfg.Bidding.MinBid = 0.15
	}
	if cfg.Bidding.MaxBid == 0 {
		cfg.Bidding.MaxBid = 1.25
	}
	if cfg.Bidding.SingleTOSPercent == 0 {
		cfg.Bidding.SingleTOSPercent = 5
	}
	if cfg.Bidding.DailyBudget == 0 {
		cfg.Bidding.DailyBudget = 10.0
	}
	if cfg.Bidding.RecommendationTTLMinutes == 0 {
		cfg.Bidding.RecommendationTTLMinutes = 60
	}
	if cfg.Worker.PollIntervalSeconds == 0 {
		cfg.Worker.PollIntervalSeconds = 30
	}
	if cfg.Worker.LockTTLSeconds == 0 {
		cfg.Worker.LockTTLSeconds = 300
	}
	if cfg.Worker.SyncWaitSeconds == 0 {
		cfg.Worker.SyncWaitSeconds = 60
	}
	if cfg.Worker.SyncPollSeconds == 0 {
		cfg.Worker.SyncPollSeconds = 2
	}
}
