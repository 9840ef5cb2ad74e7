// Package config provides user configuration management for the positions client.
//
// This package manages a YAML-based registry of connection profiles (backend URL,
// user name, document id, locale, paging and validation preferences) and resolves
// the settings a command runs with from three layers, lowest precedence first:
// built-in defaults, the selected profile, and POSITIONS_* environment variables
// (optionally loaded from .env and .env.local). Command-line flags are applied
// last by the CLI.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/positions/config.yaml or $HOME/.config/positions/config.yaml
//   - macOS: $HOME/.config/positions/config.yaml
//   - Windows: %LOCALAPPDATA%\positions\config.yaml
//
// POSITIONS_CONFIG overrides the location.
//
// # Security
//
// IMPORTANT: This package NEVER stores backend passwords. They come from
// POSITIONS_PASSWORD or an interactive prompt.
//
// # Usage Example
//
//	reg, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	overrides, _ := config.ParseOverrides()
//	settings, err := config.Resolve(reg, overrides)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := settings.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	client := settings.NewClient()
package config
