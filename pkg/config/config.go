package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageGridFS   = "gridfs"
	StorageSupabase = "supabase"
)

type Config struct {
	PostgresDSN   string `envconfig:"POSTGRES_DSN" default:"postgresql://localhost/picfeed?sslmode=disable"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"redis://localhost:6379"`
	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"picfeed"`

	SecretKey string `envconfig:"SECRET_KEY" required:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	ListenAddr  string   `envconfig:"LISTEN_ADDR" default:":8080"`
	PublicURL   string   `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"gridfs"`
	StorageBucket string `envconfig:"STORAGE_BUCKET" default:"images"`
	SupabaseURL   string `envconfig:"SUPABASE_URL"`
	SupabaseKey   string `envconfig:"SUPABASE_KEY"`

	// 6MB, same limit as most image hosts.
	MaxImageBytes int64 `envconfig:"MAX_IMAGE_BYTES" default:"6291456"`
	// Feed state of a user untouched for this long is dropped from memory.
	ViewerIdleTimeout time.Duration `envconfig:"VIEWER_IDLE_TIMEOUT" default:"30m"`
}

// Load reads the dotenv files (if they exist) into the environment and decodes
// the environment into Config. Variables already set win over the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed reading .env: %w", err)
	}

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageGridFS:
	case StorageSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("config: SUPABASE_URL and SUPABASE_KEY are required for the supabase storage driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.MaxImageBytes <= 0 {
		return errors.New("config: MAX_IMAGE_BYTES must be positive")
	}
	if c.ViewerIdleTimeout <= 0 {
		return errors.New("config: VIEWER_IDLE_TIMEOUT must be positive")
	}
	return nil
}
