// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file from the working directory on first use (values
// already present in the environment win) and uses the caarlos0/env library to
// parse environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/jonasv2/sessionkit/core/config"
//
//	type ClientConfig struct {
//		BaseURL string        `env:"SESSIONKIT_API_URL" envDefault:"http://localhost:8000/api/v1"`
//		Timeout time.Duration `env:"SESSIONKIT_API_TIMEOUT" envDefault:"30s"`
//	}
//
//	func main() {
//		var cfg ClientConfig
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per process:
//
//	var a, b ClientConfig
//	config.Load(&a) // parses the environment
//	config.Load(&b) // returns the cached value, a == b
//
// Different types are cached independently.
package config
