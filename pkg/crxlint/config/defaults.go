// Package config provides configuration management for crxlint.
package config

import "github.com/jamesainslie/crxlint/pkg/crxlint/scanner"

const (
	// AppName names the config, state and env namespaces.
	AppName = "crxlint"

	// EnvPrefix prefixes environment overrides, e.g. CRXLINT_OUTPUT.
	EnvPrefix = "CRXLINT"

	// FileName is the config file name inside ConfigDir.
	FileName = "config.yaml"

	// DefaultOutput is the default report format.
	DefaultOutput = "pretty"

	// DefaultLogLevel is the default file log level.
	DefaultLogLevel = "info"

	// DefaultConsoleLevel is the stderr log level; warnings surface registry
	// skips without drowning reports.
	DefaultConsoleLevel = "warn"
)

// DefaultExtensions and DefaultExcludeDirs mirror the scanner defaults.
var (
	DefaultExtensions  = scanner.DefaultExtensions
	DefaultExcludeDirs = scanner.DefaultExcludeDirs
)
