// Package config provides configuration management for the Jenkins exporter.
//
// This package handles loading, validating, and watching configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("jenkins_exporter.yaml")
//
//  2. From a YAML file (optional) with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("jenkins_exporter.yaml")
//
// The CLI uses LoadUnvalidated so flags can be applied before Validate.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention
// JENKINS_EXPORTER_SECTION_FIELD. For example:
//
//   - JENKINS_EXPORTER_JENKINS_URL overrides jenkins.url
//   - JENKINS_EXPORTER_JENKINS_API_KEY overrides jenkins.api_key
//   - JENKINS_EXPORTER_EXPORTER_TIMER_MODE overrides exporter.timer_mode
//   - JENKINS_EXPORTER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Command-line flags
//  5. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	jenkins:
//	  url: http://jenkins:8080
//	  api_key: "..."
//	  username: exporter
//	  password: "..."
//	exporter:
//	  listen_address: ":9118"
//	  timer_mode: fixed
//	startup:
//	  retry_interval: 30s
//
// # Reloading
//
// Watcher reloads the file when it changes. The serve loop swaps the Jenkins
// client and translation options on every successful reload; the listen
// address only takes effect on restart.
package config
