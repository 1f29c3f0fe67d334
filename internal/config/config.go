// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config describes everything the server reads from its environment.
type Config struct {
	DBPath       string        `env:"FERRUM_DB_PATH"       envDefault:"ferrum.db"`
	ListenAddr   string        `env:"FERRUM_LISTEN_ADDR"   envDefault:":8080"`
	AdminKey     string        `env:"FERRUM_ADMIN_KEY"`
	WorldSeed    int64         `env:"FERRUM_WORLD_SEED"    envDefault:"0"`
	TickInterval time.Duration `env:"FERRUM_TICK_INTERVAL" envDefault:"1s"`
	SaveInterval time.Duration `env:"FERRUM_SAVE_INTERVAL" envDefault:"60s"`
	BalanceFile  string        `env:"FERRUM_BALANCE_FILE"`
	Barbarians   int           `env:"FERRUM_BARBARIANS"    envDefault:"25"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
