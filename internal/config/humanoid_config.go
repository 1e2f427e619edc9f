// File: internal/config/humanoid_config.go
// This file defines the HumanoidConfig struct, which contains all the tunable
// parameters for the humanoid interaction simulation. These settings control
// the timing distributions for typing, the gesture generator, the retrying
// click protocol and the composite page behaviours.
//
// The configuration is designed to be loaded from a file (e.g., YAML) using
// Viper, allowing the humanoid's "personality" to be tuned without changing
// the core code. All durations are expressed in whole milliseconds.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// RangeConfig is an inclusive millisecond range.
type RangeConfig struct {
	MinMs int `mapstructure:"min_ms" yaml:"min_ms"`
	MaxMs int `mapstructure:"max_ms" yaml:"max_ms"`
}

func (r RangeConfig) validate(name string) error {
	if r.MinMs < 0 || r.MaxMs < r.MinMs {
		return fmt.Errorf("%s must satisfy 0 <= min_ms <= max_ms (got %d..%d)", name, r.MinMs, r.MaxMs)
	}
	return nil
}

// HumanoidConfig holds every knob of the behaviour engine.
type HumanoidConfig struct {
	// Seed pins the random source. Zero means seed from the clock.
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	ThinkingPauseProbability float64     `mapstructure:"thinking_pause_probability" yaml:"thinking_pause_probability"`
	CognitivePause           RangeConfig `mapstructure:"cognitive_pause" yaml:"cognitive_pause"`

	Typing   TypingConfig   `mapstructure:"typing" yaml:"typing"`
	Gesture  GestureConfig  `mapstructure:"gesture" yaml:"gesture"`
	Click    ClickConfig    `mapstructure:"click" yaml:"click"`
	Read     ReadConfig     `mapstructure:"read" yaml:"read"`
	Dropdown DropdownConfig `mapstructure:"dropdown" yaml:"dropdown"`
}

// TypingConfig tunes the character-level typing simulator.
type TypingConfig struct {
	PreTyping   RangeConfig `mapstructure:"pre_typing" yaml:"pre_typing"`
	FastKey     RangeConfig `mapstructure:"fast_key" yaml:"fast_key"`
	DefaultKey  RangeConfig `mapstructure:"default_key" yaml:"default_key"`
	SlowKey     RangeConfig `mapstructure:"slow_key" yaml:"slow_key"`
	Correction  RangeConfig `mapstructure:"correction" yaml:"correction"`
	Burst       RangeConfig `mapstructure:"burst" yaml:"burst"`
	MicroPause  RangeConfig `mapstructure:"micro_pause" yaml:"micro_pause"`
	ReviewPause RangeConfig `mapstructure:"review_pause" yaml:"review_pause"`

	FastKeys string `mapstructure:"fast_keys" yaml:"fast_keys"`

	SpeedMultiplierMin    float64 `mapstructure:"speed_multiplier_min" yaml:"speed_multiplier_min"`
	SpeedMultiplierMax    float64 `mapstructure:"speed_multiplier_max" yaml:"speed_multiplier_max"`
	ErrorRateMax          float64 `mapstructure:"error_rate_max" yaml:"error_rate_max"`
	BurstModeProbability  float64 `mapstructure:"burst_mode_probability" yaml:"burst_mode_probability"`
	BurstKeyProbability   float64 `mapstructure:"burst_key_probability" yaml:"burst_key_probability"`
	MicroPauseProbability float64 `mapstructure:"micro_pause_probability" yaml:"micro_pause_probability"`
}

// GestureConfig tunes the idle gesture generator.
type GestureConfig struct {
	MoveProbabilityMin    float64     `mapstructure:"move_probability_min" yaml:"move_probability_min"`
	MoveProbabilityMax    float64     `mapstructure:"move_probability_max" yaml:"move_probability_max"`
	ScrollProbabilityMin  float64     `mapstructure:"scroll_probability_min" yaml:"scroll_probability_min"`
	ScrollProbabilityMax  float64     `mapstructure:"scroll_probability_max" yaml:"scroll_probability_max"`
	CorrectionProbability float64     `mapstructure:"correction_probability" yaml:"correction_probability"`
	CorrectionRadiusPx    int         `mapstructure:"correction_radius_px" yaml:"correction_radius_px"`
	ScrollDownProbability float64     `mapstructure:"scroll_down_probability" yaml:"scroll_down_probability"`
	ScrollDistancePx      RangeConfig `mapstructure:"scroll_distance_px" yaml:"scroll_distance_px"`
	MinSteps              int         `mapstructure:"min_steps" yaml:"min_steps"`
	MaxSteps              int         `mapstructure:"max_steps" yaml:"max_steps"`
	// Region bounds the random pointer targets, in CSS pixels.
	RegionMinX int `mapstructure:"region_min_x" yaml:"region_min_x"`
	RegionMaxX int `mapstructure:"region_max_x" yaml:"region_max_x"`
	RegionMinY int `mapstructure:"region_min_y" yaml:"region_min_y"`
	RegionMaxY int `mapstructure:"region_max_y" yaml:"region_max_y"`
}

// ClickConfig tunes the retrying click protocol.
type ClickConfig struct {
	MaxRetries        int           `mapstructure:"max_retries" yaml:"max_retries"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	OffsetMinFraction float64       `mapstructure:"offset_min_fraction" yaml:"offset_min_fraction"`
	OffsetMaxFraction float64       `mapstructure:"offset_max_fraction" yaml:"offset_max_fraction"`
	MinSteps          int           `mapstructure:"min_steps" yaml:"min_steps"`
	MaxSteps          int           `mapstructure:"max_steps" yaml:"max_steps"`
	PreClick          RangeConfig   `mapstructure:"pre_click" yaml:"pre_click"`
	PostClick         RangeConfig   `mapstructure:"post_click" yaml:"post_click"`
	RetryBackoff      RangeConfig   `mapstructure:"retry_backoff" yaml:"retry_backoff"`
}

// ReadConfig tunes the page-reading simulation.
type ReadConfig struct {
	MinRounds int         `mapstructure:"min_rounds" yaml:"min_rounds"`
	MaxRounds int         `mapstructure:"max_rounds" yaml:"max_rounds"`
	Scan      RangeConfig `mapstructure:"scan" yaml:"scan"`
	Terminal  RangeConfig `mapstructure:"terminal" yaml:"terminal"`
}

// DropdownConfig tunes the dropdown selection choreography.
type DropdownConfig struct {
	Open        RangeConfig `mapstructure:"open" yaml:"open"`
	ReadOptions RangeConfig `mapstructure:"read_options" yaml:"read_options"`
	Close       RangeConfig `mapstructure:"close" yaml:"close"`
}

// setHumanoidDefaults registers the default humanoid settings on v.
func setHumanoidDefaults(v *viper.Viper) {
	setRange := func(key string, minMs, maxMs int) {
		v.SetDefault(key+".min_ms", minMs)
		v.SetDefault(key+".max_ms", maxMs)
	}

	v.SetDefault("humanoid.seed", 0)
	v.SetDefault("humanoid.thinking_pause_probability", 0.10)
	setRange("humanoid.cognitive_pause", 600, 1800)

	// -- Typing --
	setRange("humanoid.typing.pre_typing", 300, 800)
	setRange("humanoid.typing.fast_key", 50, 120)
	setRange("humanoid.typing.default_key", 80, 180)
	setRange("humanoid.typing.slow_key", 120, 250)
	setRange("humanoid.typing.correction", 400, 900)
	setRange("humanoid.typing.burst", 40, 90)
	setRange("humanoid.typing.micro_pause", 500, 1300)
	setRange("humanoid.typing.review_pause", 500, 1500)
	v.SetDefault("humanoid.typing.fast_keys", "etaoinshr")
	v.SetDefault("humanoid.typing.speed_multiplier_min", 0.7)
	v.SetDefault("humanoid.typing.speed_multiplier_max", 1.3)
	v.SetDefault("humanoid.typing.error_rate_max", 0.08)
	v.SetDefault("humanoid.typing.burst_mode_probability", 0.30)
	v.SetDefault("humanoid.typing.burst_key_probability", 0.40)
	v.SetDefault("humanoid.typing.micro_pause_probability", 0.05)

	// -- Gesture --
	v.SetDefault("humanoid.gesture.move_probability_min", 0.45)
	v.SetDefault("humanoid.gesture.move_probability_max", 0.75)
	v.SetDefault("humanoid.gesture.scroll_probability_min", 0.20)
	v.SetDefault("humanoid.gesture.scroll_probability_max", 0.45)
	v.SetDefault("humanoid.gesture.correction_probability", 0.15)
	v.SetDefault("humanoid.gesture.correction_radius_px", 20)
	v.SetDefault("humanoid.gesture.scroll_down_probability", 0.65)
	setRange("humanoid.gesture.scroll_distance_px", 100, 500)
	v.SetDefault("humanoid.gesture.min_steps", 2)
	v.SetDefault("humanoid.gesture.max_steps", 10)
	v.SetDefault("humanoid.gesture.region_min_x", 100)
	v.SetDefault("humanoid.gesture.region_max_x", 1100)
	v.SetDefault("humanoid.gesture.region_min_y", 100)
	v.SetDefault("humanoid.gesture.region_max_y", 700)

	// -- Click --
	v.SetDefault("humanoid.click.max_retries", 3)
	v.SetDefault("humanoid.click.timeout", "5s")
	v.SetDefault("humanoid.click.offset_min_fraction", 0.2)
	v.SetDefault("humanoid.click.offset_max_fraction", 0.8)
	v.SetDefault("humanoid.click.min_steps", 3)
	v.SetDefault("humanoid.click.max_steps", 8)
	setRange("humanoid.click.pre_click", 100, 300)
	setRange("humanoid.click.post_click", 300, 800)
	setRange("humanoid.click.retry_backoff", 1000, 2000)

	// -- Read page --
	v.SetDefault("humanoid.read.min_rounds", 1)
	v.SetDefault("humanoid.read.max_rounds", 3)
	setRange("humanoid.read.scan", 800, 2000)
	setRange("humanoid.read.terminal", 1500, 3500)

	// -- Dropdown --
	setRange("humanoid.dropdown.open", 500, 1200)
	setRange("humanoid.dropdown.read_options", 300, 800)
	setRange("humanoid.dropdown.close", 500, 1200)
}

// Validate checks ranges and probabilities of the humanoid settings.
func (h HumanoidConfig) Validate() error {
	ranges := map[string]RangeConfig{
		"humanoid.cognitive_pause":            h.CognitivePause,
		"humanoid.typing.pre_typing":          h.Typing.PreTyping,
		"humanoid.typing.fast_key":            h.Typing.FastKey,
		"humanoid.typing.default_key":         h.Typing.DefaultKey,
		"humanoid.typing.slow_key":            h.Typing.SlowKey,
		"humanoid.typing.correction":          h.Typing.Correction,
		"humanoid.typing.burst":               h.Typing.Burst,
		"humanoid.typing.micro_pause":         h.Typing.MicroPause,
		"humanoid.typing.review_pause":        h.Typing.ReviewPause,
		"humanoid.gesture.scroll_distance_px": h.Gesture.ScrollDistancePx,
		"humanoid.click.pre_click":            h.Click.PreClick,
		"humanoid.click.post_click":           h.Click.PostClick,
		"humanoid.click.retry_backoff":        h.Click.RetryBackoff,
		"humanoid.read.scan":                  h.Read.Scan,
		"humanoid.read.terminal":              h.Read.Terminal,
		"humanoid.dropdown.open":              h.Dropdown.Open,
		"humanoid.dropdown.read_options":      h.Dropdown.ReadOptions,
		"humanoid.dropdown.close":             h.Dropdown.Close,
	}
	for name, r := range ranges {
		if err := r.validate(name); err != nil {
			return err
		}
	}

	probabilities := map[string]float64{
		"humanoid.thinking_pause_probability":      h.ThinkingPauseProbability,
		"humanoid.typing.error_rate_max":           h.Typing.ErrorRateMax,
		"humanoid.typing.burst_mode_probability":   h.Typing.BurstModeProbability,
		"humanoid.typing.burst_key_probability":    h.Typing.BurstKeyProbability,
		"humanoid.typing.micro_pause_probability":  h.Typing.MicroPauseProbability,
		"humanoid.gesture.move_probability_min":    h.Gesture.MoveProbabilityMin,
		"humanoid.gesture.move_probability_max":    h.Gesture.MoveProbabilityMax,
		"humanoid.gesture.scroll_probability_min":  h.Gesture.ScrollProbabilityMin,
		"humanoid.gesture.scroll_probability_max":  h.Gesture.ScrollProbabilityMax,
		"humanoid.gesture.correction_probability":  h.Gesture.CorrectionProbability,
		"humanoid.gesture.scroll_down_probability": h.Gesture.ScrollDownProbability,
		"humanoid.click.offset_min_fraction":       h.Click.OffsetMinFraction,
		"humanoid.click.offset_max_fraction":       h.Click.OffsetMaxFraction,
	}
	for name, p := range probabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0.0 and 1.0", name)
		}
	}

	switch {
	case h.Typing.SpeedMultiplierMin <= 0 || h.Typing.SpeedMultiplierMax < h.Typing.SpeedMultiplierMin:
		return fmt.Errorf("humanoid.typing speed multiplier range is invalid")
	case h.Gesture.MoveProbabilityMax < h.Gesture.MoveProbabilityMin:
		return fmt.Errorf("humanoid.gesture.move_probability_max must be >= move_probability_min")
	case h.Gesture.ScrollProbabilityMax < h.Gesture.ScrollProbabilityMin:
		return fmt.Errorf("humanoid.gesture.scroll_probability_max must be >= scroll_probability_min")
	case h.Gesture.MinSteps < 1 || h.Gesture.MaxSteps < h.Gesture.MinSteps:
		return fmt.Errorf("humanoid.gesture steps must satisfy 1 <= min_steps <= max_steps")
	case h.Gesture.RegionMaxX < h.Gesture.RegionMinX || h.Gesture.RegionMaxY < h.Gesture.RegionMinY:
		return fmt.Errorf("humanoid.gesture region is inverted")
	case h.Gesture.CorrectionRadiusPx < 0:
		return fmt.Errorf("humanoid.gesture.correction_radius_px must not be negative")
	case h.Click.MaxRetries <= 0:
		return fmt.Errorf("humanoid.click.max_retries must be a positive integer")
	case h.Click.Timeout <= 0:
		return fmt.Errorf("humanoid.click.timeout must be a positive duration")
	case h.Click.OffsetMaxFraction < h.Click.OffsetMinFraction:
		return fmt.Errorf("humanoid.click.offset_max_fraction must be >= offset_min_fraction")
	case h.Click.MinSteps < 1 || h.Click.MaxSteps < h.Click.MinSteps:
		return fmt.Errorf("humanoid.click steps must satisfy 1 <= min_steps <= max_steps")
	case h.Read.MinRounds < 0 || h.Read.MaxRounds < h.Read.MinRounds:
		return fmt.Errorf("humanoid.read rounds must satisfy 0 <= min_rounds <= max_rounds")
	}
	return nil
}
