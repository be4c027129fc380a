// Package config loads dashboard settings from defaults, an optional
// config file and ADBOARD_* environment variables.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"ad-revenue-lab/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. ADBOARD_PERIOD.
const EnvPrefix = "ADBOARD"

// Source kinds.
const (
	SourceCSV        = "csv"
	SourceSample     = "sample"
	SourcePostgres   = "postgres"
	SourceClickhouse = "clickhouse"
)

// Defaults.
const (
	DefaultPeriod            = 202509
	DefaultBusinessAttribute = "外卖BD"
	DefaultAddr              = ":8080"
	DefaultPreviewLimit      = 100
)

// DefaultCountries are the country departments shown by default.
var DefaultCountries = []string{"AU", "NZ", "US", "CA", "UK", "EU", "JP", "KP"}

// Config is the full application configuration.
type Config struct {
	Period            int          `mapstructure:"period"`
	BusinessAttribute string       `mapstructure:"business_attribute"`
	Countries         []string     `mapstructure:"countries"`
	Source            SourceConfig `mapstructure:"source"`
	Server            ServerConfig `mapstructure:"server"`
	Detail            DetailConfig `mapstructure:"detail"`
	Log               LogConfig    `mapstructure:"log"`
}

// SourceConfig selects where the ledger snapshot is loaded from.
type SourceConfig struct {
	Kind          string `mapstructure:"kind"`
	CSVPath       string `mapstructure:"csv_path"`
	SkipInvalid   bool   `mapstructure:"skip_invalid"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
	SampleRows    int    `mapstructure:"sample_rows"`
	SampleSeed    uint64 `mapstructure:"sample_seed"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DetailConfig configures detail previews and exports.
type DetailConfig struct {
	PreviewLimit int    `mapstructure:"preview_limit"`
	ExportDir    string `mapstructure:"export_dir"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers every key with its default so environment
// overrides apply to keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("period", DefaultPeriod)
	v.SetDefault("business_attribute", DefaultBusinessAttribute)
	v.SetDefault("countries", DefaultCountries)

	v.SetDefault("source.kind", SourceSample)
	v.SetDefault("source.csv_path", "")
	v.SetDefault("source.skip_invalid", false)
	v.SetDefault("source.postgres_dsn", "")
	v.SetDefault("source.clickhouse_dsn", "")
	v.SetDefault("source.sample_rows", 1000)
	v.SetDefault("source.sample_seed", 42)

	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("detail.preview_limit", DefaultPreviewLimit)
	v.SetDefault("detail.export_dir", "exports")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Load reads configuration from v, applying defaults and environment
// overrides, and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	countries := make([]string, 0, len(c.Countries))
	for _, code := range c.Countries {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			countries = append(countries, code)
		}
	}
	c.Countries = countries
	c.BusinessAttribute = strings.TrimSpace(c.BusinessAttribute)
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
}

var reservedCountries = []string{
	domain.DepartmentAD,
	domain.DepartmentOther,
	strings.ToUpper(domain.RegionGlobal),
	domain.RegionGlobalLabel,
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := ValidatePeriod(c.Period); err != nil {
		return err
	}
	if c.BusinessAttribute == "" {
		return fmt.Errorf("business_attribute must not be empty")
	}
	if len(c.Countries) == 0 {
		return fmt.Errorf("countries must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Countries))
	for _, code := range c.Countries {
		if slices.Contains(reservedCountries, strings.ToUpper(code)) {
			return fmt.Errorf("country code %q is reserved", code)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("duplicate country code %q", code)
		}
		seen[code] = struct{}{}
	}

	switch c.Source.Kind {
	case SourceSample:
		if c.Source.SampleRows < 0 {
			return fmt.Errorf("source.sample_rows must not be negative")
		}
	case SourceCSV:
		if c.Source.CSVPath == "" {
			return fmt.Errorf("source.csv_path is required for csv source")
		}
	case SourcePostgres:
		if c.Source.PostgresDSN == "" {
			return fmt.Errorf("source.postgres_dsn is required for postgres source")
		}
	case SourceClickhouse:
		if c.Source.ClickhouseDSN == "" {
			return fmt.Errorf("source.clickhouse_dsn is required for clickhouse source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if c.Detail.PreviewLimit <= 0 {
		return fmt.Errorf("detail.preview_limit must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidatePeriod checks a YYYYMM period.
func ValidatePeriod(p int) error {
	year, month := p/100, p%100
	if year < 1970 || year > 9999 || month < 1 || month > 12 {
		return fmt.Errorf("invalid period %d: want YYYYMM", p)
	}
	return nil
}

// Context returns the computation context described by c.
func (c *Config) Context() domain.Context {
	return domain.Context{
		Period:                  c.Period,
		TargetBusinessAttribute: c.BusinessAttribute,
		Countries:               slices.Clone(c.Countries),
	}
}

// ZerologLevel returns the configured log level, defaulting to info.
func (c *Config) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
