package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bananaledger/internal/config"
)

func TestGeneratorConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.GeneratorConfig{
		Provider:     "openai",
		APIKey:       "sk-legacy",
		DefaultModel: "gpt-4o-mini",
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, "gpt-4o-mini", primary.DefaultModel)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestGeneratorConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.GeneratorConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.GeneratorProviderConfig{
			Provider: "claude",
			APIKey:   "sk-primary",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
}

func TestGeneratorConfig_ProviderChain(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GeneratorConfig
		want []string
	}{
		{"legacy only", config.GeneratorConfig{Provider: "openai"}, []string{"openai"}},
		{"primary and tertiary", config.GeneratorConfig{
			Primary:  config.GeneratorProviderConfig{Provider: "openai"},
			Tertiary: config.GeneratorProviderConfig{Provider: "gemini"},
		}, []string{"openai", "gemini"}},
		{"full chain", config.GeneratorConfig{
			Primary:   config.GeneratorProviderConfig{Provider: "openai"},
			Secondary: config.GeneratorProviderConfig{Provider: "claude"},
			Tertiary:  config.GeneratorProviderConfig{Provider: "gemini"},
		}, []string{"openai", "claude", "gemini"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, pc := range tt.cfg.ProviderChain() {
				got = append(got, pc.Provider)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeneratorConfig_SecondaryConfig_NotConfigured(t *testing.T) {
	cfg := config.GeneratorConfig{Provider: "openai"}

	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())
}

func TestConversionConfig_Derived(t *testing.T) {
	cfg := config.ConversionConfig{MaxUploadMB: 2}

	assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, 60*time.Second, cfg.CallTimeout())

	cfg.TimeoutSecs = 5
	assert.Equal(t, 5*time.Second, cfg.CallTimeout())
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := config.DBConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "banana", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@db:5433/banana?sslmode=disable", cfg.DSN())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Generator.PrimaryConfig().Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Generator.PrimaryConfig().DefaultModel)
	assert.Equal(t, 3, cfg.Conversion.MaxExamples)
	assert.Equal(t, "statements", cfg.S3.Prefix)
	assert.Empty(t, cfg.S3.Bucket)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BANANA_GENERATOR_PRIMARY_PROVIDER", "claude")
	t.Setenv("BANANA_GENERATOR_PRIMARY_API_KEY", "sk-ant")
	t.Setenv("BANANA_GENERATOR_SECONDARY_PROVIDER", "gemini")
	t.Setenv("BANANA_CONVERSION_MAX_EXAMPLES", "5")
	t.Setenv("BANANA_CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("BANANA_SERVER_PORT", "")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()

	require.NoError(t, err)
	chain := cfg.Generator.ProviderChain()
	require.Len(t, chain, 2)
	assert.Equal(t, "claude", chain[0].Provider)
	assert.Equal(t, "sk-ant", chain[0].APIKey)
	assert.Equal(t, "gemini", chain[1].Provider)
	assert.Equal(t, 5, cfg.Conversion.MaxExamples)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, ":9090", cfg.Server.Port)
}
