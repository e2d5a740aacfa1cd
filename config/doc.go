// Package config provides configuration loading and validation for docroot.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (DOCROOT_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// LoadWatched additionally subscribes to config-file changes, which is how
// mime-type entries added to a running server take effect without a restart.
//
// # Environment Variables
//
// All config keys map to environment variables with DOCROOT_ prefix:
//   - root.path → DOCROOT_ROOT_PATH
//   - server.port → DOCROOT_SERVER_PORT
//   - log.level → DOCROOT_LOG_LEVEL
//
// # Configuration Structure
//
// The Config struct contains:
//   - Root: the served directory
//   - Server: bind address and port (0 picks an ephemeral port)
//   - HTTP: per-client-IP rate limit
//   - CORS: cross-origin resource sharing settings
//   - Mime: extension to content-type entries merged into the registry
//   - Metrics: scrape listener address (empty disables)
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Root path must be set
//   - Port must be 0-65535
//   - Rate limit must not be negative
//   - Log level must be debug, info, warn, or error
//   - Env must be dev or prod
package config
