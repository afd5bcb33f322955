// Package config loads, normalizes, and validates megacut's TOML
// configuration.
package config
