package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"alcyxob/ifit-coach/internal/domain"
)

// Database drivers.
const (
	DriverMongo = "mongo"
	DriverLocal = "local"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig     `mapstructure:"server"`
	Database DatabaseConfig   `mapstructure:"database"`
	S3       S3Config         `mapstructure:"s3"`
	JWT      JWTConfig        `mapstructure:"jwt"`
	AI       AIConfig         `mapstructure:"ai"`
	Trainers []domain.Trainer `mapstructure:"trainers"`
	Export   ExportConfig     `mapstructure:"export"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// IsProduction switches logging and gin into release mode.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // mongo or local
	URI      string `mapstructure:"uri"`
	Name     string `mapstructure:"name"`
	LocalDir string `mapstructure:"local_dir"` // empty keeps the local store in memory
}

type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type AIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`      // per attempt
	CallTimeout time.Duration `mapstructure:"call_timeout"` // whole gateway call, retries included
	MaxRetries  int           `mapstructure:"max_retries"`
}

type ExportConfig struct {
	Scale int `mapstructure:"scale"` // raster scale factor for image exports
}

// LoadConfig reads configuration from file or environment variables. A .env file in path
// is loaded first when present.
func LoadConfig(path string) (config Config, err error) {
	if err := godotenv.Load(path + "/.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if len(config.Trainers) == 0 {
		config.Trainers = DefaultRoster()
	}
	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.driver", DriverLocal)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "ifit_coach")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.call_timeout", "3m")
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("export.scale", 2)

	// Secrets are commonly injected under their bare names.
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("ai.api_key", "AI_API_KEY", "OPENAI_API_KEY")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverLocal:
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	if c.S3.Enabled && c.S3.BucketName == "" {
		return errors.New("config: s3.bucket_name is required when s3 is enabled")
	}
	seen := make(map[string]bool)
	for _, t := range c.Trainers {
		key := strings.ToLower(t.Name)
		if t.Name == "" || seen[key] {
			return fmt.Errorf("config: trainer names must be non-empty and unique, got %q", t.Name)
		}
		seen[key] = true
	}
	return nil
}

// DefaultRoster is the built-in trainer roster. Entries have no password hash, so nobody can
// sign in as them until hashes are configured.
func DefaultRoster() []domain.Trainer {
	return []domain.Trainer{
		{Name: "Athul", Specialties: []domain.Specialty{domain.SpecialtyWeightLoss}},
		{Name: "Athithiya", Specialties: []domain.Specialty{domain.SpecialtyBodybuilding}},
		{Name: "Saieel", Specialties: []domain.Specialty{domain.SpecialtyLeanBody}},
	}
}
