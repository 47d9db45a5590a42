// Package config loads configuration structs from environment variables
// using `env` struct tags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from the process environment. Fields declare their
// variable name and default via tags:
//
//	type Config struct {
//	    HTTPPort int           `env:"HTTP_PORT" envDefault:"8080"`
//	    CartTTL  time.Duration `env:"CART_TTL" envDefault:"720h"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
