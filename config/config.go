package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverREST   = "rest"
	DriverMemory = "memory"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDBName string `env:"MONGO_DB_NAME" envDefault:"dashboard_db"`
	BackendURL  string `env:"BACKEND_URL"`
	BackendKey  string `env:"BACKEND_KEY"`

	JWTSecret        string        `env:"JWT_SECRET"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	WriteSettleDelay time.Duration `env:"WRITE_SETTLE_DELAY" envDefault:"500ms"`
	AdminRoles       []string      `env:"ADMIN_ROLES" envSeparator:"," envDefault:"Manager Technique,Responsable Technique,Responsable Marketing"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	LogFile  string `env:"LOG_FILE" envDefault:"logs/dashboard-service.log"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Prazno iskljucuje notifikacije.
	CassandraHosts []string `env:"CASS_DB" envSeparator:","`

	BreakerTimeout time.Duration `env:"BREAKER_TIMEOUT" envDefault:"5s"`

	PasswordBlackListFile string `env:"PASSWORD_BLACKLIST_FILE"`
}

// Load reads envFile when it exists, then the process environment. Variables
// already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("dashboard config from environment: %w", err)
	}
	cfg.AdminRoles = trimAll(cfg.AdminRoles)
	cfg.CassandraHosts = trimAll(cfg.CassandraHosts)
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverREST:
		if c.BackendURL == "" {
			errs = append(errs, errors.New("BACKEND_URL is required for the rest store driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.WriteSettleDelay < 0 {
		errs = append(errs, errors.New("WRITE_SETTLE_DELAY must not be negative"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) NotificationsEnabled() bool {
	return len(c.CassandraHosts) > 0
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
