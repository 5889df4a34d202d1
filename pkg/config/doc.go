// Package config provides configuration management for pricelock.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("pricelock.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("pricelock.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PRICELOCK_SECTION_FIELD.
// For example:
//
//   - PRICELOCK_ENGINE_MAX_STEPS overrides engine.max_steps
//   - PRICELOCK_EVIDENCE_SQLITE_DRIVER overrides evidence.sqlite.driver
//   - PRICELOCK_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation collects every problem before failing:
//
//	configuration validation failed with 2 errors:
//	  - engine.max_steps: must be between 1 and 10000000, got -5
//	  - evidence.sqlite.driver: invalid driver "pg": must be 'sqlite' or 'sqlite3'
//
// # Example Configuration
//
//	engine:
//	  max_steps: 10000
//	  max_depth: 64
//
//	evidence:
//	  enabled: true
//	  backend: "sqlite"
//	  sqlite:
//	    driver: "sqlite"
//	    path: "data/evidence.db"
//
//	telemetry:
//	  logging:
//	    level: "debug"
//	    format: "console"
package config
