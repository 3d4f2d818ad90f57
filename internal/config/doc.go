// Package config defines the application configuration structure and loads
// it from environment variables and optional config files using viper,
// validating the result with go-playground/validator.
package config
