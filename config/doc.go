// Package config loads extraction settings from YAML files and
// resolves mode-dependent defaults. Precedence is built-in defaults,
// then the config file, then explicit overrides.
package config
