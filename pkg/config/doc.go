// Package config loads Lattice configuration from environment variables with
// an optional YAML file overlay, and can watch the file for changes.
//
// Environment variables use the LATTICE_ prefix and take precedence over the
// file. All settings have working defaults; an empty environment yields a
// valid configuration.
package config
