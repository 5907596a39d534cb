package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/jamesainslie/crxlint/pkg/crxlint/logging"
	"github.com/spf13/viper"
)

// ScanConfig configures source discovery for analyze.
type ScanConfig struct {
	Extensions  []string `mapstructure:"extensions"`
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
	Exclude     []string `mapstructure:"exclude"`
}

// RegistryConfig configures registry sync.
type RegistryConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Console    string            `mapstructure:"console"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	Output   string         `mapstructure:"output"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Registry RegistryConfig `mapstructure:"registry"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// New returns a viper instance with search paths, environment binding and
// defaults applied. When cfgFile is set it is the only file considered.
func New(cfgFile string) *viper.Viper {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("scan.extensions", DefaultExtensions)
	v.SetDefault("scan.exclude_dirs", DefaultExcludeDirs)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("registry.exclude", []string{})
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // empty disables file logging
	v.SetDefault("logging.console", DefaultConsoleLevel)
	v.SetDefault("logging.components", map[string]string{})
}

// Read reads the config file into v. A missing file in the search path is
// not an error; an explicitly named file that is missing is.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Decode unmarshals v into a Config and expands ~ in paths.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	path, err := ExpandPath(cfg.Logging.Path)
	if err != nil {
		return nil, err
	}
	cfg.Logging.Path = path
	return &cfg, nil
}

// Load reads the config file into v and decodes the merged settings.
// Flags bound to v before Load take precedence over the file.
func Load(v *viper.Viper) (*Config, error) {
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ConfigDir returns $XDG_CONFIG_HOME/crxlint, which defaults to
// ~/.config/crxlint on Linux.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), FileName)
}

const defaultConfig = `# crxlint configuration

# Report format: pretty, plain, json, yaml
output: %s

# Source discovery for "crxlint analyze"
scan:
  extensions: [%s]
  exclude_dirs: [%s]
  # doublestar globs relative to the project root, e.g. "vendor/**"
  exclude: []

# "crxlint registry sync"
registry:
  # category directories to ignore
  exclude: []

logging:
  # File log level: debug, info, warn, error
  level: %s
  # Log file path (empty disables file logging; suggested: %s)
  path: ""
  # Console (stderr) level; --verbose forces debug
  console: %s
`

// WriteDefault writes a default config file if none exists and returns its
// path. created is false when a file was already present.
func WriteDefault() (path string, created bool, err error) {
	path = ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(defaultConfig,
		DefaultOutput,
		strings.Join(DefaultExtensions, ", "),
		strings.Join(DefaultExcludeDirs, ", "),
		DefaultLogLevel,
		logging.DefaultLogPath(),
		DefaultConsoleLevel,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
