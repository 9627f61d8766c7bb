package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/paths"
)

// EnvPrefix is the prefix of environment variables overriding config keys.
const EnvPrefix = "OPENCODE_HELIX"

// Themes lists the accepted values of the theme key.
var Themes = []string{"minimal", "hacker", "matrix", "crt"}

// Defaults applied by Init.
const (
	DefaultTheme            = "hacker"
	DefaultProbeTimeout     = time.Second
	DefaultDiscoveryTimeout = 3 * time.Second
	DefaultRequestTimeout   = 5 * time.Second
	DefaultMaxProbes        = 8
	DefaultServerCommand    = "opencode"
)

// Config represents the top-level configuration structure.
type Config struct {
	Theme            string        `mapstructure:"theme" yaml:"theme"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	DiscoveryTimeout time.Duration `mapstructure:"discovery_timeout" yaml:"discovery_timeout"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxProbes        int           `mapstructure:"max_probes" yaml:"max_probes"`
	ServerCommand    string        `mapstructure:"server_command" yaml:"server_command"`
	ServerPassword   string        `mapstructure:"server_password" yaml:"server_password"`
	Submit           bool          `mapstructure:"submit" yaml:"submit"`
	PromptsDir       string        `mapstructure:"prompts_dir" yaml:"prompts_dir"`
	Prompts          []Prompt      `mapstructure:"prompts" yaml:"prompts"`
}

// Prompt is an inline prompt template declared in the config file.
type Prompt struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description"`
	Prompt      string `mapstructure:"prompt" yaml:"prompt"`
}

// Init resets Viper and registers search paths, environment bindings and defaults.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	_ = viper.BindEnv("server_password", EnvPrefix+"_SERVER_PASSWORD", "OPENCODE_SERVER_PASSWORD")

	viper.SetDefault("theme", DefaultTheme)
	viper.SetDefault("probe_timeout", DefaultProbeTimeout)
	viper.SetDefault("discovery_timeout", DefaultDiscoveryTimeout)
	viper.SetDefault("request_timeout", DefaultRequestTimeout)
	viper.SetDefault("max_probes", DefaultMaxProbes)
	viper.SetDefault("server_command", DefaultServerCommand)
	viper.SetDefault("server_password", "")
	viper.SetDefault("submit", true)
	viper.SetDefault("prompts_dir", paths.PromptsDir())
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file is an error.
// If path is empty, it searches the default location and falls back to defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// defaults only
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		case path != "" && isNotExist(err):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

// Default returns the configuration produced by Init with no file and no environment.
func Default() *Config {
	return &Config{
		Theme:            DefaultTheme,
		ProbeTimeout:     DefaultProbeTimeout,
		DiscoveryTimeout: DefaultDiscoveryTimeout,
		RequestTimeout:   DefaultRequestTimeout,
		MaxProbes:        DefaultMaxProbes,
		ServerCommand:    DefaultServerCommand,
		Submit:           true,
		PromptsDir:       paths.PromptsDir(),
	}
}
