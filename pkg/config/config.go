package config

import (
	"fmt"
	"time"

	"nasapuff/pkg/consts"

	"github.com/caarlos0/env/v11"
)

// Config is the whole process configuration, read from the environment once at startup.
type Config struct {
	ApiKey          string        `env:"APOD_API_KEY,required,notEmpty"`
	AstroURL        string        `env:"ASTRO_URL" envDefault:"https://api.nasa.gov/planetary/apod"`
	Port            string        `env:"APP_PORT" envDefault:"8080"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"3h"`

	DB DB
}

// DB selects the optional picture history backend. An empty Driver disables it.
type DB struct {
	Driver   string `env:"DB_DRIVER"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	Username string `env:"DB_USERNAME"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	Path     string `env:"DB_PATH" envDefault:"nasapuff.db"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if c.RefreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}

	if err := c.DB.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate accepts an empty driver (history disabled) or one of the supported drivers.
func (d DB) Validate() error {
	switch d.Driver {
	case "", consts.DriverPostgres, consts.DriverSQLite:
		return nil
	}

	return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
}
