package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "SQLSHAPE"
	configName     = "sqlshape"
	defaultEnvFile = ".env"
)

// Loader reads the configuration into a viper instance.
type Loader struct {
	v           *viper.Viper
	configFile  string
	envFiles    []string
	searchPaths []string
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithViper loads through v, typically one that has command line flags bound.
func WithViper(v *viper.Viper) LoaderOption {
	return func(l *Loader) {
		l.v = v
	}
}

// WithConfigFile reads the given YAML file instead of searching for one.
func WithConfigFile(path string) LoaderOption {
	return func(l *Loader) {
		l.configFile = path
	}
}

// WithEnvFiles replaces the default .env file list.
// Missing files are skipped.
func WithEnvFiles(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.envFiles = paths
	}
}

// WithSearchPaths replaces the directories searched for sqlshape.yaml.
func WithSearchPaths(dirs ...string) LoaderOption {
	return func(l *Loader) {
		l.searchPaths = dirs
	}
}

// NewLoader creates a Loader that searches the working directory and the
// user config directory for sqlshape.yaml and reads ./.env.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		envFiles:    []string{defaultEnvFile},
		searchPaths: defaultSearchPaths(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.v == nil {
		l.v = viper.New()
	}
	return l
}

// Load is shorthand for NewLoader(opts...).Load().
func Load(opts ...LoaderOption) (*Config, error) {
	return NewLoader(opts...).Load()
}

// Load merges defaults, the config file, .env files, the environment and
// bound flags, in increasing priority.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	l.v.SetEnvPrefix(envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
	l.setDefaults()

	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(configName)
		for _, dir := range l.searchPaths {
			l.v.AddConfigPath(dir)
		}
	}
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Output = strings.ToLower(cfg.Output)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("database", "")
	l.v.SetDefault("readOnly", false)
	l.v.SetDefault("busyTimeout", "5s")
	l.v.SetDefault("logQueries", false)
	l.v.SetDefault("output", OutputJSON)
	l.v.SetDefault("log.format", "text")
	l.v.SetDefault("log.debug", false)
	l.v.SetDefault("log.file", "")
	l.v.SetDefault("log.quiet", false)
}

// loadEnvFiles exports variables from the env files without overriding
// variables that are already set.
func (l *Loader) loadEnvFiles() error {
	for _, path := range l.envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

func defaultSearchPaths() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, configName))
	}
	return dirs
}
