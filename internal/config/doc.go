// Package config loads, validates, and normalizes carddex configuration.
//
// Configuration lives in a TOML file (default ~/.config/carddex/config.toml)
// and is decoded into a single Config struct with one section per subsystem.
// Load applies defaults first, then file values, then normalization (path
// expansion, env fallbacks) and validation, so callers always receive a
// usable, absolute-path configuration or an error.
package config
