package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// LoadEnv loads the given .env files into the process environment before any
// struct parsing happens. Unlike the implicit default load, a missing file
// here is treated as an error because the caller asked for it explicitly.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load populates the provided configuration struct from the process
// environment based on `env` field tags.
//
// On first use the default .env file in the working directory is loaded if it
// exists; its absence is not an error.
//
// Example:
//
//	type APIConfig struct {
//		BaseURL string `env:"PORTAL_API_URL" envDefault:"https://nutriplan.app"`
//		Timeout int    `env:"PORTAL_API_TIMEOUT" envDefault:"30"`
//	}
//
//	var cfg APIConfig
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file might not exist and that's ok
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// This is useful for configurations that are required for the application to start.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}
