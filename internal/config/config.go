// Package config loads the viewdata CLI configuration from a YAML file and
// VIEWDATA_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// ConfigName is the base name searched when no config file is given.
	ConfigName = "viewdata"
	// EnvPrefix prefixes every environment override, e.g. VIEWDATA_LOG_LEVEL.
	EnvPrefix = "VIEWDATA"

	defaultExtension = ".tpl"
	defaultLogLevel  = "info"
)

// Config is the CLI configuration.
type Config struct {
	// Rules lists context rule files or directories, loaded in order.
	Rules []string `mapstructure:"rules" validate:"omitempty,dive,required"`
	// Templates is the template base directory used by render.
	Templates string `mapstructure:"templates"`
	// Extension is appended to template names lacking it.
	Extension string `mapstructure:"extension" validate:"omitempty,startswith=."`
	// Escape HTML-escapes normalized strings.
	Escape bool `mapstructure:"escape"`
	// Stringify turns normalized scalars into text.
	Stringify bool `mapstructure:"stringify"`
	// LogLevel sets the stderr log level.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// NewViper returns a viper instance reading configFile, or viewdata.yaml from
// the working directory when configFile is empty.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"rules", "templates", "extension", "escape", "stringify", "log_level"} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("extension", defaultExtension)
	v.SetDefault("log_level", defaultLogLevel)
	return v
}

// Load reads the config file when present, applies environment overrides and
// validates the result. A missing default config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills empty optional fields.
func (c *Config) SetDefaults() {
	if c.Extension == "" {
		c.Extension = defaultExtension
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// Validate checks struct tags and reports the first failing field by its
// config key.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("config: invalid %s: failed %q check", strings.ToLower(first.Field()), first.Tag())
		}
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}
