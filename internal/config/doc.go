// Package config provides configuration management for the dashboard.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Default() values
//	2. A YAML file (--config flag, ADVDASH_CONFIG, config.yaml or configs/config.yaml)
//	3. Environment variables prefixed with ADVDASH_
//
// # Environment Variables
//
// Nested sections join their names with underscores:
//
//	ADVDASH_SERVER_PORT=8080
//	ADVDASH_LOGGING_LEVEL=debug
//	ADVDASH_UPLOAD_MAX_BYTES=10485760
//	ADVDASH_ANALYSIS_CATEGORIES_FILE=categories.yaml
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests should start from Default() which touches neither the environment
// nor the file system.
package config
