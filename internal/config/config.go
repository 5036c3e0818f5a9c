package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Log        LogConfig
	CORS       CORSConfig
	Generator  GeneratorConfig
	Conversion ConversionConfig
	S3         S3Config
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeneratorProviderConfig holds settings for a single LLM generation provider.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds LLM ledger generator settings with multi-provider support.
type GeneratorConfig struct {
	// Legacy flat fields, used when no primary provider is configured.
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (g *GeneratorConfig) PrimaryConfig() *GeneratorProviderConfig {
	if g.Primary.Provider != "" {
		return &g.Primary
	}
	return &GeneratorProviderConfig{
		Provider:     g.Provider,
		APIKey:       g.APIKey,
		DefaultModel: g.DefaultModel,
		BaseURL:      g.BaseURL,
		TimeoutSecs:  g.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (g *GeneratorConfig) TertiaryConfig() *GeneratorProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// ProviderChain returns the configured providers in fallback order.
func (g *GeneratorConfig) ProviderChain() []*GeneratorProviderConfig {
	chain := []*GeneratorProviderConfig{g.PrimaryConfig()}
	if s := g.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := g.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// ConversionConfig holds statement conversion settings.
type ConversionConfig struct {
	MaxExamples int    `mapstructure:"max_examples"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
	TempDir     string `mapstructure:"temp_dir"`
}

// CallTimeout returns the deadline applied to each generator call.
func (c *ConversionConfig) CallTimeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *ConversionConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the statement archive bucket.
// An empty Bucket disables archiving.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the BANANA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BANANA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "banana")
	v.SetDefault("db.password", "banana_secret")
	v.SetDefault("db.name", "banana_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Generator defaults (legacy flat)
	v.SetDefault("generator.provider", "openai")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.default_model", "gpt-4o-mini")
	v.SetDefault("generator.base_url", "")
	v.SetDefault("generator.timeout_secs", 120)

	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("generator."+tier+".provider", "")
		v.SetDefault("generator."+tier+".api_key", "")
		v.SetDefault("generator."+tier+".default_model", "")
		v.SetDefault("generator."+tier+".base_url", "")
		v.SetDefault("generator."+tier+".timeout_secs", 120)
	}

	// Conversion defaults
	v.SetDefault("conversion.max_examples", 3)
	v.SetDefault("conversion.timeout_secs", 60)
	v.SetDefault("conversion.max_upload_mb", 20)
	v.SetDefault("conversion.temp_dir", "")

	// S3 archive defaults (disabled)
	v.SetDefault("s3.region", "eu-central-2")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "statements")
	v.SetDefault("s3.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "BANANA_SERVER_PORT",
		"server.read_timeout":      "BANANA_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "BANANA_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":  "BANANA_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":       "BANANA_SERVER_ENVIRONMENT",
		"db.host":                  "BANANA_DB_HOST",
		"db.port":                  "BANANA_DB_PORT",
		"db.user":                  "BANANA_DB_USER",
		"db.password":              "BANANA_DB_PASSWORD",
		"db.name":                  "BANANA_DB_NAME",
		"db.sslmode":               "BANANA_DB_SSLMODE",
		"db.max_open":              "BANANA_DB_MAX_OPEN",
		"db.max_idle":              "BANANA_DB_MAX_IDLE",
		"log.level":                "BANANA_LOG_LEVEL",
		"log.format":               "BANANA_LOG_FORMAT",
		"cors.allowed_origins":     "BANANA_CORS_ALLOWED_ORIGINS",
		"generator.provider":       "BANANA_GENERATOR_PROVIDER",
		"generator.default_model":  "BANANA_GENERATOR_DEFAULT_MODEL",
		"generator.base_url":       "BANANA_GENERATOR_BASE_URL",
		"generator.timeout_secs":   "BANANA_GENERATOR_TIMEOUT_SECS",
		"conversion.max_examples":  "BANANA_CONVERSION_MAX_EXAMPLES",
		"conversion.timeout_secs":  "BANANA_CONVERSION_TIMEOUT_SECS",
		"conversion.max_upload_mb": "BANANA_CONVERSION_MAX_UPLOAD_MB",
		"conversion.temp_dir":      "BANANA_CONVERSION_TEMP_DIR",
		"s3.region":                "BANANA_S3_REGION",
		"s3.bucket":                "BANANA_S3_BUCKET",
		"s3.prefix":                "BANANA_S3_PREFIX",
		"s3.endpoint":              "BANANA_S3_ENDPOINT",
		"s3.access_key":            "BANANA_S3_ACCESS_KEY",
		"s3.secret_key":            "BANANA_S3_SECRET_KEY",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		prefix := "BANANA_GENERATOR_" + strings.ToUpper(tier) + "_"
		envBindings["generator."+tier+".provider"] = prefix + "PROVIDER"
		envBindings["generator."+tier+".api_key"] = prefix + "API_KEY"
		envBindings["generator."+tier+".default_model"] = prefix + "DEFAULT_MODEL"
		envBindings["generator."+tier+".base_url"] = prefix + "BASE_URL"
		envBindings["generator."+tier+".timeout_secs"] = prefix + "TIMEOUT_SECS"
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	// The legacy key also honours the provider's conventional variable.
	_ = v.BindEnv("generator.api_key", "BANANA_GENERATOR_API_KEY", "OPENAI_API_KEY")

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BANANA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BANANA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{AllowedOrigins: splitList(v.GetString("cors.allowed_origins"))}

	cfg.Generator = GeneratorConfig{
		Provider:     v.GetString("generator.provider"),
		APIKey:       v.GetString("generator.api_key"),
		DefaultModel: v.GetString("generator.default_model"),
		BaseURL:      v.GetString("generator.base_url"),
		TimeoutSecs:  v.GetInt("generator.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	cfg.Conversion = ConversionConfig{
		MaxExamples: v.GetInt("conversion.max_examples"),
		TimeoutSecs: v.GetInt("conversion.timeout_secs"),
		MaxUploadMB: v.GetInt64("conversion.max_upload_mb"),
		TempDir:     v.GetString("conversion.temp_dir"),
	}

	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Prefix:    v.GetString("s3.prefix"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) GeneratorProviderConfig {
	key := "generator." + tier + "."
	return GeneratorProviderConfig{
		Provider:     v.GetString(key + "provider"),
		APIKey:       v.GetString(key + "api_key"),
		DefaultModel: v.GetString(key + "default_model"),
		BaseURL:      v.GetString(key + "base_url"),
		TimeoutSecs:  v.GetInt(key + "timeout_secs"),
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
