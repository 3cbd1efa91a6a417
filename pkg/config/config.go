package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName      = ".affected-e2e"
	configType      = "yaml"
	envPrefix       = "AFFECTED_E2E"
	envKeySeparator = "_"
	dotEnvFile      = ".env"
)

const (
	DefaultRepoRoot     = "."
	DefaultSourceRoot   = "lib/core"
	DefaultE2ERoot      = "e2e"
	DefaultGitRemote    = "origin"
	DefaultGitBranch    = "develop"
	DefaultSearchTool   = "builtin"
	DefaultCacheSize    = 2048
	DefaultOutputFormat = "human"
	DefaultOutputColor  = true
	DefaultProgress     = false
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

var (
	ErrEmptyRoot         = errors.New("root directories must not be empty")
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidSearchTool = errors.New("invalid search tool")
	ErrInvalidCacheSize  = errors.New("cache size must be positive")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidLogFormat  = errors.New("invalid log format")
)

var (
	validFormats     = []string{"human", "list", "json", "table"}
	validSearchTools = []string{"builtin", "grep"}
	validLogLevels   = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats  = []string{"text", "json"}
)

type Config struct {
	RepoRoot   string        `mapstructure:"repo_root"`
	SourceRoot string        `mapstructure:"source_root"`
	E2ERoot    string        `mapstructure:"e2e_root"`
	Git        GitConfig     `mapstructure:"git"`
	Search     SearchConfig  `mapstructure:"search"`
	Cache      CacheConfig   `mapstructure:"cache"`
	Output     OutputConfig  `mapstructure:"output"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

type GitConfig struct {
	Remote string `mapstructure:"remote"`
	Branch string `mapstructure:"branch"`
}

type SearchConfig struct {
	Tool string `mapstructure:"tool"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Color    bool   `mapstructure:"color"`
	Progress bool   `mapstructure:"progress"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig merges, from lowest to highest precedence: defaults, the YAML
// config file, AFFECTED_E2E_* environment variables (including those set by
// a .env file in the working directory) and overrides. An explicit
// configPath must exist; otherwise a missing .affected-e2e.yaml is ignored.
func LoadConfig(configPath string, overrides map[string]any) (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvFile, err)
	}

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("repo_root", DefaultRepoRoot)
	v.SetDefault("source_root", DefaultSourceRoot)
	v.SetDefault("e2e_root", DefaultE2ERoot)

	v.SetDefault("git.remote", DefaultGitRemote)
	v.SetDefault("git.branch", DefaultGitBranch)

	v.SetDefault("search.tool", DefaultSearchTool)
	v.SetDefault("cache.size", DefaultCacheSize)

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.color", DefaultOutputColor)
	v.SetDefault("output.progress", DefaultProgress)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

func (c *Config) Validate() error {
	if c.RepoRoot == "" || c.SourceRoot == "" || c.E2ERoot == "" {
		return ErrEmptyRoot
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidFormat, c.Output.Format, strings.Join(validFormats, ", "))
	}
	if !slices.Contains(validSearchTools, c.Search.Tool) {
		return fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidSearchTool, c.Search.Tool, strings.Join(validSearchTools, ", "))
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Cache.Size)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}
