// Package config loads and validates application configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML
// file, then DEBRIEF_* environment variables. Environment always wins
// so deployments can override a checked-in config file without editing
// it.
package config
