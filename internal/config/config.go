// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests. It is
// read-only: command-line overrides reach Config through viper flag bindings.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Humanoid() HumanoidConfig
	Script() ScriptConfig
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	HumanoidCfg HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
	ScriptCfg   ScriptConfig   `mapstructure:"script" yaml:"script"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Humanoid() HumanoidConfig { return c.HumanoidCfg }
func (c *Config) Script() ScriptConfig     { return c.ScriptCfg }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls how the headless browser is launched.
type BrowserConfig struct {
	Headless    bool     `mapstructure:"headless" yaml:"headless"`
	ExecPath    string   `mapstructure:"exec_path" yaml:"exec_path"`
	UserDataDir string   `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	UserAgent   string   `mapstructure:"user_agent" yaml:"user_agent"`
	Args        []string `mapstructure:"args" yaml:"args"`
	// Viewport is the window size as {"width": w, "height": h}.
	Viewport map[string]int `mapstructure:"viewport" yaml:"viewport"`
	// Sessions is the number of independent browser sessions the runner drives in parallel.
	Sessions int `mapstructure:"sessions" yaml:"sessions"`
	// PointerRateHz caps the rate of synthetic pointer events, similar to a mouse polling rate.
	PointerRateHz     float64       `mapstructure:"pointer_rate_hz" yaml:"pointer_rate_hz"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	Persona           PersonaConfig `mapstructure:"persona" yaml:"persona"`
}

// PersonaConfig describes the browser identity presented to pages.
// Empty fields leave the browser's own value in place.
type PersonaConfig struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
	UserAgent string   `mapstructure:"user_agent" yaml:"user_agent"`
	Platform  string   `mapstructure:"platform" yaml:"platform"`
	Languages []string `mapstructure:"languages" yaml:"languages"`
	Timezone  string   `mapstructure:"timezone" yaml:"timezone"`
	Locale    string   `mapstructure:"locale" yaml:"locale"`
}

// ViewportSize returns the configured window size, falling back to 1280x800.
func (b BrowserConfig) ViewportSize() (int, int) {
	w, h := b.Viewport["width"], b.Viewport["height"]
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 800
	}
	return w, h
}

// ScriptConfig describes the sequence of primitive actions the runner performs.
type ScriptConfig struct {
	URL   string       `mapstructure:"url" yaml:"url"`
	Steps []StepConfig `mapstructure:"steps" yaml:"steps"`
	// PauseBetweenSteps inserts a cognitive pause between consecutive steps.
	PauseBetweenSteps bool `mapstructure:"pause_between_steps" yaml:"pause_between_steps"`
	// StopOnFailure aborts the remaining steps after the first failed step.
	StopOnFailure bool `mapstructure:"stop_on_failure" yaml:"stop_on_failure"`
}

// StepConfig is one scripted action.
type StepConfig struct {
	Action   string `mapstructure:"action" yaml:"action"`
	Selector string `mapstructure:"selector" yaml:"selector"`
	// Option is the option selector for "select" steps.
	Option string `mapstructure:"option" yaml:"option"`
	// Value is the text for "type" steps or the URL for "navigate" steps.
	Value      string `mapstructure:"value" yaml:"value"`
	Label      string `mapstructure:"label" yaml:"label"`
	MinMs      int    `mapstructure:"min_ms" yaml:"min_ms"`
	MaxMs      int    `mapstructure:"max_ms" yaml:"max_ms"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scalpel-humanoid")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.viewport", map[string]int{"width": 1280, "height": 800})
	v.SetDefault("browser.sessions", 1)
	v.SetDefault("browser.pointer_rate_hz", 125.0)
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.action_timeout", "2m")
	v.SetDefault("browser.persona.enabled", true)
	v.SetDefault("browser.persona.languages", []string{"en-US", "en"})
	v.SetDefault("browser.persona.locale", "en-US")

	// Initialize all Humanoid defaults using the centralized function in humanoid_config.go.
	setHumanoidDefaults(v)

	// -- Script --
	v.SetDefault("script.pause_between_steps", true)
	v.SetDefault("script.stop_on_failure", true)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.BrowserCfg.UserDataDir != "" {
		dir, err := homedir.Expand(cfg.BrowserCfg.UserDataDir)
		if err != nil {
			return nil, fmt.Errorf("could not resolve user data dir '%s': %w", cfg.BrowserCfg.UserDataDir, err)
		}
		cfg.BrowserCfg.UserDataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file (if any) and environment into v, applying defaults first.
// An empty path searches the working directory and $HOME/.scalpel-humanoid for config.yaml.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("could not resolve config path '%s': %w", path, err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + string(os.PathSeparator) + ".scalpel-humanoid")
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HUMANOID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}
	return NewConfigFromViper(v)
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BrowserCfg.Sessions <= 0 {
		return fmt.Errorf("browser.sessions must be a positive integer")
	}
	if c.BrowserCfg.PointerRateHz < 0 {
		return fmt.Errorf("browser.pointer_rate_hz must not be negative")
	}
	if err := c.HumanoidCfg.Validate(); err != nil {
		return err
	}
	return c.ScriptCfg.Validate()
}

// knownActions lists the step actions understood by the runner.
var knownActions = map[string]bool{
	"type": true, "click": true, "select": true, "read": true,
	"wait": true, "gesture": true, "navigate": true, "pause": true,
}

// Validate checks that every step is well formed.
func (s ScriptConfig) Validate() error {
	for i, step := range s.Steps {
		action := strings.ToLower(step.Action)
		if !knownActions[action] {
			return fmt.Errorf("script.steps[%d]: unknown action '%s'", i, step.Action)
		}
		switch action {
		case "type", "click":
			if step.Selector == "" {
				return fmt.Errorf("script.steps[%d]: action '%s' requires a selector", i, action)
			}
		case "select":
			if step.Selector == "" || step.Option == "" {
				return fmt.Errorf("script.steps[%d]: action 'select' requires selector and option", i)
			}
		case "navigate":
			if step.Value == "" {
				return fmt.Errorf("script.steps[%d]: action 'navigate' requires a value (url)", i)
			}
		case "wait":
			if step.MinMs < 0 || step.MaxMs < step.MinMs {
				return fmt.Errorf("script.steps[%d]: wait requires 0 <= min_ms <= max_ms", i)
			}
		}
	}
	return nil
}
