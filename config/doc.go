// Package config loads capdag configuration with Viper.
//
// Values come, lowest precedence first, from built-in defaults, a YAML file
// (capdag.yml, searched in standard locations unless given explicitly), a
// .env file and CAPDAG_-prefixed environment variables, where nested keys
// use underscores (CAPDAG_ENGINE_MODE=parallel).
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("capdag", &cfg); err != nil { ... }
package config
