// Package config provides configuration management for cpikit.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file: $CPI_CONFIG_FILE, ./cpikit.yaml or ./configs/cpikit.yaml
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CPI_<SECTION>_<FIELD>:
//
//	CPI_LOGGING_LEVEL=debug
//	CPI_TREE_CHARACTERS=3,4,5,6,8
//	CPI_TREE_ROOT_NAME="All items"
//	CPI_SPLICE_MODE=yoy
//	CPI_TELEMETRY_METRICS_FILE=reports/metrics.prom
//
// # Validation
//
// Load validates the merged configuration with validator tags: enumerated
// log levels and formats, at least two strictly ascending tree depths, and
// a bounded worker count.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.Paths.Resolve("")
//
// For tests, Default returns the same values Load produces with no
// environment or file.
package config
