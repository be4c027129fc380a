package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultPeriod, cfg.Period)
	assert.Equal(t, DefaultBusinessAttribute, cfg.BusinessAttribute)
	assert.Equal(t, DefaultCountries, cfg.Countries)
	assert.Equal(t, SourceSample, cfg.Source.Kind)
	assert.Equal(t, DefaultPreviewLimit, cfg.Detail.PreviewLimit)
	assert.Equal(t, zerolog.InfoLevel, cfg.ZerologLevel())

	ctx := cfg.Context()
	assert.Equal(t, 202509, ctx.Period)
	assert.Equal(t, "外卖BD", ctx.TargetBusinessAttribute)
	assert.Len(t, ctx.Regions(), 9)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADBOARD_PERIOD", "202412")
	t.Setenv("ADBOARD_COUNTRIES", "us, jp")
	t.Setenv("ADBOARD_SOURCE_KIND", "CSV")
	t.Setenv("ADBOARD_SOURCE_CSV_PATH", "/data/ledger.csv")
	t.Setenv("ADBOARD_SERVER_ADDR", ":9090")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 202412, cfg.Period)
	assert.Equal(t, []string{"US", "JP"}, cfg.Countries)
	assert.Equal(t, SourceCSV, cfg.Source.Kind)
	assert.Equal(t, "/data/ledger.csv", cfg.Source.CSVPath)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
period: 202501
countries: [AU, NZ]
detail:
  preview_limit: 25
log:
  level: debug
`), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 202501, cfg.Period)
	assert.Equal(t, []string{"AU", "NZ"}, cfg.Countries)
	assert.Equal(t, 25, cfg.Detail.PreviewLimit)
	assert.Equal(t, zerolog.DebugLevel, cfg.ZerologLevel())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(viper.New())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"month 13", func(c *Config) { c.Period = 202513 }},
		{"month 0", func(c *Config) { c.Period = 202500 }},
		{"empty attribute", func(c *Config) { c.BusinessAttribute = "" }},
		{"no countries", func(c *Config) { c.Countries = nil }},
		{"duplicate country", func(c *Config) { c.Countries = []string{"AU", "AU"} }},
		{"reserved AD", func(c *Config) { c.Countries = []string{"AU", "AD"} }},
		{"reserved global", func(c *Config) { c.Countries = []string{"GLOBAL"} }},
		{"csv without path", func(c *Config) { c.Source.Kind = SourceCSV }},
		{"postgres without dsn", func(c *Config) { c.Source.Kind = SourcePostgres }},
		{"clickhouse without dsn", func(c *Config) { c.Source.Kind = SourceClickhouse }},
		{"unknown source", func(c *Config) { c.Source.Kind = "ftp" }},
		{"zero preview", func(c *Config) { c.Detail.PreviewLimit = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidatePeriod(t *testing.T) {
	assert.NoError(t, ValidatePeriod(202509))
	assert.NoError(t, ValidatePeriod(202501))
	assert.Error(t, ValidatePeriod(2025))
	assert.Error(t, ValidatePeriod(202513))
}
