package config

import "github.com/spf13/viper"

// Config holds runtime configuration for a parallax invocation. Values
// are populated from .parallax.yaml, PARALLAX_* env vars, and CLI flags.
type Config struct {
	ChangesDir string `mapstructure:"changes_dir"`
	SpecsDir   string `mapstructure:"specs_dir"`
	Workflow   string `mapstructure:"workflow"` // explicit schema file path
	Verbose    bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("changes_dir", "changes")
	viper.SetDefault("specs_dir", "specs")
	viper.SetDefault("workflow", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
