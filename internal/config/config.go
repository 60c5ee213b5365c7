// Package config loads the service configuration from YAML with
// environment variable overrides and hot reload.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
)

// Config represents the application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
	// Registrars is the list of approved registrar organisations offered
	// on the first step. Empty means free-text entry.
	Registrars []string `mapstructure:"registrars"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TemplatesPath   string        `mapstructure:"templates_path"`
	StaticPath      string        `mapstructure:"static_path"`
	CSRFSecret      string        `mapstructure:"csrf_secret"`
}

type DatabaseConfig struct {
	// Driver is postgres in production; sqlite3 keeps local runs
	// dependency-free.
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type SessionConfig struct {
	WarnAfter     time.Duration `mapstructure:"warn_after"`
	ExpireAfter   time.Duration `mapstructure:"expire_after"`
	SweepInterval string        `mapstructure:"sweep_interval"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

type UploadsConfig struct {
	// Backend is FS or DB.
	Backend  string `mapstructure:"backend"`
	BasePath string `mapstructure:"base_path"`
}

type NotifyConfig struct {
	Enabled   bool              `mapstructure:"enabled"`
	APIKey    string            `mapstructure:"api_key"`
	Templates map[string]string `mapstructure:"templates"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "domain-request")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.templates_path", "templates")
	v.SetDefault("server.static_path", "static")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.name", "domain_request.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("session.warn_after", 15*time.Minute)
	v.SetDefault("session.expire_after", 20*time.Minute)
	v.SetDefault("session.sweep_interval", "@every 1m")
	v.SetDefault("uploads.backend", "FS")
	v.SetDefault("uploads.base_path", "uploads")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load initializes the configuration with hot reload support
func Load(configPath string) error {
	var err error
	once.Do(func() {
		v := viper.New()
		v.SetConfigType("yaml")
		setDefaults(v)

		v.SetConfigName("config")
		v.AddConfigPath(configPath)
		if readErr := v.ReadInConfig(); readErr != nil {
			// Defaults plus env vars are a complete configuration.
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("failed to read config: %w", readErr)
				return
			}
		}

		v.SetEnvPrefix("GOVUK")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		cfg = &Config{}
		if err = v.Unmarshal(cfg); err != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}

		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			newCfg := &Config{}
			if err := v.Unmarshal(newCfg); err != nil {
				fmt.Printf("Failed to reload config: %v\n", err)
				return
			}
			mu.Lock()
			cfg = newCfg
			mu.Unlock()
		})
	})
	return err
}

// Get returns the current configuration (thread-safe)
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadFromFile loads configuration from a specific file (useful for testing)
func LoadFromFile(configFile string) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// GetDSN returns the database connection string for the configured driver.
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite3" {
		return c.Name
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetRedisAddr returns the Redis server address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetServerAddr returns the server listen address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction returns true if running in production mode
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
