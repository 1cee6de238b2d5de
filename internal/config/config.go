package config

import (
	"fmt"
	"time"
)

// Mode selects which server the binary runs.
type Mode string

const (
	ModeAPI Mode = "api"
	ModeWeb Mode = "web"
)

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// MinJWTSecretLength is the HS512 key size.
const MinJWTSecretLength = 32

type Config struct {
	API API `yaml:"api"`
	Web Web `yaml:"web"`
}

type API struct {
	Host       string        `yaml:"host" env:"YOGA_API_HOST"`
	Port       int           `yaml:"port" env:"YOGA_API_PORT"`
	Store      string        `yaml:"store" env:"YOGA_API_STORE"`
	JSONPath   string        `yaml:"json_path" env:"YOGA_API_JSON_PATH"`
	SQLitePath string        `yaml:"sqlite_path" env:"YOGA_API_SQLITE_PATH"`
	JWTSecret  string        `yaml:"jwt_secret" env:"YOGA_JWT_SECRET"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"YOGA_TOKEN_TTL"`
	Seed       bool          `yaml:"seed" env:"YOGA_API_SEED"`

	// per client IP, requests per second on /api/auth/login
	LoginRate  float64 `yaml:"login_rate" env:"YOGA_LOGIN_RATE"`
	LoginBurst int     `yaml:"login_burst" env:"YOGA_LOGIN_BURST"`
}

type Web struct {
	Host            string        `yaml:"host" env:"YOGA_WEB_HOST"`
	Port            int           `yaml:"port" env:"YOGA_WEB_PORT"`
	APIURL          string        `yaml:"api_url" env:"YOGA_API_URL"`
	SessionLifetime time.Duration `yaml:"session_lifetime" env:"YOGA_SESSION_LIFETIME"`
	SecureCookie    bool          `yaml:"secure_cookie" env:"YOGA_SECURE_COOKIE"`
}

func (a API) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

func (w Web) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		API: API{
			Host:       "localhost",
			Port:       8080,
			Store:      StoreSQLite,
			JSONPath:   "./data/yoga.json",
			SQLitePath: "./data/yoga.db",
			JWTSecret:  "development-only-yoga-jwt-secret-change-me",
			TokenTTL:   24 * time.Hour,
			Seed:       true,
			LoginRate:  0.5,
			LoginBurst: 5,
		},
		Web: Web{
			Host:            "localhost",
			Port:            4200,
			APIURL:          "http://localhost:8080",
			SessionLifetime: 12 * time.Hour,
		},
	}
}

// New layers the config file and the environment over Default.
func New() (*Config, error) {
	cfg := Default()

	if err := loadFile(configPath(), cfg); err != nil {
		return nil, err
	}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.API.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q, want %q or %q", c.API.Store, StoreJSON, StoreSQLite)
	}
	if len(c.API.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinJWTSecretLength, len(c.API.JWTSecret))
	}
	if c.API.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.Web.APIURL == "" {
		return fmt.Errorf("web api url is required")
	}
	return nil
}
