package cli

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/roomlobby/internal/factory"
	"github.com/mcoot/roomlobby/internal/storage/file"
	redisstorage "github.com/mcoot/roomlobby/internal/storage/redis"
	"github.com/mcoot/roomlobby/internal/transport/ws"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	AuthURL     string
	GameURL     string
	Storage     string
	SessionFile string
	RedisURL    string
	SessionID   string
	AccessToken string
	Timeout     time.Duration
	Output      string
	Verbose     bool
}

// LoadDotEnv reads .env from the working directory without overriding the
// environment. A missing file is fine.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("ROOMLOBBY_SERVER", "ws://localhost:8080/ws"),
		AuthURL:     os.Getenv("ROOMLOBBY_AUTH_URL"),
		GameURL:     getEnvOrDefault("ROOMLOBBY_GAME_URL", "http://localhost:8080"),
		Storage:     getEnvOrDefault("ROOMLOBBY_STORAGE", factory.StorageTypeFile),
		SessionFile: getEnvOrDefault("ROOMLOBBY_SESSION_FILE", file.DefaultPath()),
		RedisURL:    os.Getenv("ROOMLOBBY_REDIS_URL"),
		SessionID:   os.Getenv("ROOMLOBBY_SESSION_ID"),
		AccessToken: os.Getenv("ROOMLOBBY_ACCESS_TOKEN"),
		Timeout:     30 * time.Second,
		Output:      "text",
		Verbose:     false,
	}
}

// FactoryConfig maps the CLI settings onto the application factory
func (c *Config) FactoryConfig() (factory.Config, error) {
	fc := factory.Config{
		StorageType: c.Storage,
		SessionFile: c.SessionFile,
		AuthURL:     c.AuthURL,
		AuthTimeout: c.Timeout,
	}
	if c.Storage == factory.StorageTypeRedis {
		if c.RedisURL == "" {
			return factory.Config{}, errors.New("--redis-url required when --storage=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.SessionID = c.SessionID
		fc.RedisConfig = &redisCfg
	}
	return fc, nil
}

// WebsocketConfig returns the transport settings for ServerURL
func (c *Config) WebsocketConfig() ws.Config {
	wsCfg := ws.DefaultConfig()
	wsCfg.URL = c.ServerURL
	if c.Timeout > 0 && c.Timeout < wsCfg.DialTimeout {
		wsCfg.DialTimeout = c.Timeout
	}
	return wsCfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
