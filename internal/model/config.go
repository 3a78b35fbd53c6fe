package model

import "time"

// Config is the complete customsdoc configuration
type Config struct {
	Ingest      IngestConfig      `yaml:"ingest" mapstructure:"ingest"`
	Validation  ValidationConfig  `yaml:"validation" mapstructure:"validation"`
	Tariff      TariffConfig      `yaml:"tariff" mapstructure:"tariff"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// IngestConfig controls document parsing
type IngestConfig struct {
	MaxBytes     int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
	CSVDelimiter string `yaml:"csv_delimiter" mapstructure:"csv_delimiter"`
}

// ValidationConfig controls the rule pipeline
type ValidationConfig struct {
	DisabledRules []string `yaml:"disabled_rules" mapstructure:"disabled_rules"`
	FailFast      bool     `yaml:"fail_fast" mapstructure:"fail_fast"`
	EEIThreshold  float64  `yaml:"eei_threshold" mapstructure:"eei_threshold"`
}

// TariffConfig selects and tunes the tariff-code registry
type TariffConfig struct {
	Source    string        `yaml:"source" mapstructure:"source"` // static, file, http, postgres
	Path      string        `yaml:"path,omitempty" mapstructure:"path"`
	URL       string        `yaml:"url,omitempty" mapstructure:"url"`
	DSN       string        `yaml:"dsn,omitempty" mapstructure:"dsn"`
	Table     string        `yaml:"table" mapstructure:"table"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	Robots    bool          `yaml:"respect_robots" mapstructure:"respect_robots"` // honor robots.txt of the http source
	RateLimit RateLimit     `yaml:"rate_limit" mapstructure:"rate_limit"`
	Cache     CacheConfig   `yaml:"cache" mapstructure:"cache"`
}

// RateLimit bounds outbound registry requests per host
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls lookup caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisAddr string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
}

// ConcurrencyConfig sizes worker pools
type ConcurrencyConfig struct {
	RuleWorkers  int `yaml:"rule_workers" mapstructure:"rule_workers"`
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Pretty  bool `yaml:"pretty" mapstructure:"pretty"`
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			MaxBytes:     100 * 1024 * 1024,
			CSVDelimiter: ",",
		},
		Validation: ValidationConfig{
			DisabledRules: []string{},
			FailFast:      false,
			EEIThreshold:  2500,
		},
		Tariff: TariffConfig{
			Source:    "static",
			Table:     "hts_codes",
			Timeout:   2 * time.Second,
			UserAgent: "customsdoc/0.1",
			Robots:    true,
			RateLimit: RateLimit{
				RequestsPerSecond: 5,
				BurstSize:         5,
			},
			Cache: CacheConfig{
				Enabled:   true,
				MemoryTTL: 1 * time.Hour,
				DiskTTL:   24 * time.Hour,
			},
		},
		Concurrency: ConcurrencyConfig{
			RuleWorkers:  4,
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			Pretty: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
