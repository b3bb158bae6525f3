// Package config loads application configuration from a YAML file and
// the environment.
//
// Configuration is read from config.yaml in UNPLAYER_CONFIG_DIR (or
// ~/.config/unplayer), with every key overridable through UNPLAYER_*
// environment variables. A missing config file is not an error; the
// defaults give a working instance with no library roots configured.
package config
