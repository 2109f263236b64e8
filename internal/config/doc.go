// Package config provides configuration loading and validation for the STT
// bridge service. It handles YAML-based configuration with struct validation
// and supports environment overrides for the ASR endpoint.
package config
