// Package config loads pricewatch configuration from YAML with ${VAR}
// expansion, PRICEWATCH_* environment overrides, defaults and validation.
package config
