// Package config loads application configuration from environment variables
// into plain Go structs.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a small, type-safe API:
//
//   - Loads values from one or multiple `.env` files (fallback to the default
//     `.env` in the current working directory).
//   - Parses the environment into any Go struct using field tags.
//   - Exposes a helper that panics on failure (`MustLoad`) for configuration
//     the process cannot start without.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields with
// `env` tags:
//
//	type APIConfig struct {
//	    BaseURL string `env:"PORTAL_API_URL,required"`
//	    Timeout int    `env:"PORTAL_API_TIMEOUT" envDefault:"30"`
//	}
//
// Then populate it:
//
//	var cfg APIConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - `ErrParsingConfig`  – failed to parse env vars into struct.
//   - `ErrLoadingEnvFile` – an explicitly requested .env file could not be read.
//   - `ErrNilPointer`     – nil pointer passed to `Load`/`MustLoad`.
package config
