// Package config loads, validates, and normalizes the TOML configuration
// that drives the subforge daemon and CLI.
package config
