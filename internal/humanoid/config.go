// internal/humanoid/config.go
package humanoid

import (
	"math"
	"time"

	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
)

// Range is an inclusive range of whole milliseconds.
type Range struct {
	MinMs, MaxMs int
}

// normalize clamps negative bounds to zero and swaps inverted bounds.
func (r Range) normalize() Range {
	if r.MinMs < 0 {
		r.MinMs = 0
	}
	if r.MaxMs < 0 {
		r.MaxMs = 0
	}
	if r.MaxMs < r.MinMs {
		r.MinMs, r.MaxMs = r.MaxMs, r.MinMs
	}
	return r
}

// scale multiplies both bounds by f, flooring to whole milliseconds.
func (r Range) scale(f float64) Range {
	return Range{
		MinMs: int(math.Floor(float64(r.MinMs) * f)),
		MaxMs: int(math.Floor(float64(r.MaxMs) * f)),
	}
}

// Region bounds random pointer targets, in CSS pixels.
type Region struct {
	MinX, MaxX, MinY, MaxY int
}

// Config holds the parameters defining the behavior of the simulation.
type Config struct {
	// Rng is the random source. When nil, a clock-seeded source is used.
	Rng Source

	// ThinkingPauseProbability is the chance any delay is doubled.
	ThinkingPauseProbability float64
	CognitivePause           Range

	// Typing Behavior
	PreTyping             Range
	FastKey               Range
	DefaultKey            Range
	SlowKey               Range
	Correction            Range
	Burst                 Range
	MicroPause            Range
	ReviewPause           Range
	FastKeys              string
	SpeedMultiplierMin    float64
	SpeedMultiplierMax    float64
	ErrorRateMax          float64
	BurstModeProbability  float64
	BurstKeyProbability   float64
	MicroPauseProbability float64

	// Gesture Behavior
	MoveProbabilityMin    float64
	MoveProbabilityMax    float64
	ScrollProbabilityMin  float64
	ScrollProbabilityMax  float64
	CorrectionProbability float64
	CorrectionRadiusPx    int
	ScrollDownProbability float64
	// ScrollDistancePx holds pixels, not milliseconds.
	ScrollDistancePx Range
	GestureMinSteps  int
	GestureMaxSteps  int
	GestureRegion    Region

	// Clicking Behavior
	ClickMaxRetries int
	ClickTimeout    time.Duration
	ClickOffsetMin  float64
	ClickOffsetMax  float64
	ClickMinSteps   int
	ClickMaxSteps   int
	PreClick        Range
	PostClick       Range
	RetryBackoff    Range

	// Page Reading
	ReadMinRounds int
	ReadMaxRounds int
	ReadScan      Range
	ReadTerminal  Range

	// Dropdown Choreography
	DropdownOpen        Range
	DropdownReadOptions Range
	DropdownClose       Range
	// DropdownListHeightPx is how far below the trigger the opened list is assumed to extend.
	DropdownListHeightPx int
}

// DefaultConfig returns a configuration representing an average user.
func DefaultConfig() Config {
	return Config{
		ThinkingPauseProbability: 0.10,
		CognitivePause:           Range{600, 1800},

		PreTyping:             Range{300, 800},
		FastKey:               Range{50, 120},
		DefaultKey:            Range{80, 180},
		SlowKey:               Range{120, 250},
		Correction:            Range{400, 900},
		Burst:                 Range{40, 90},
		MicroPause:            Range{500, 1300},
		ReviewPause:           Range{500, 1500},
		FastKeys:              "etaoinshr",
		SpeedMultiplierMin:    0.7,
		SpeedMultiplierMax:    1.3,
		ErrorRateMax:          0.08,
		BurstModeProbability:  0.30,
		BurstKeyProbability:   0.40,
		MicroPauseProbability: 0.05,

		MoveProbabilityMin:    0.45,
		MoveProbabilityMax:    0.75,
		ScrollProbabilityMin:  0.20,
		ScrollProbabilityMax:  0.45,
		CorrectionProbability: 0.15,
		CorrectionRadiusPx:    20,
		ScrollDownProbability: 0.65,
		ScrollDistancePx:      Range{100, 500},
		GestureMinSteps:       2,
		GestureMaxSteps:       10,
		GestureRegion:         Region{MinX: 100, MaxX: 1100, MinY: 100, MaxY: 700},

		ClickMaxRetries: 3,
		ClickTimeout:    5 * time.Second,
		ClickOffsetMin:  0.2,
		ClickOffsetMax:  0.8,
		ClickMinSteps:   3,
		ClickMaxSteps:   8,
		PreClick:        Range{100, 300},
		PostClick:       Range{300, 800},
		RetryBackoff:    Range{1000, 2000},

		ReadMinRounds: 1,
		ReadMaxRounds: 3,
		ReadScan:      Range{800, 2000},
		ReadTerminal:  Range{1500, 3500},

		DropdownOpen:         Range{500, 1200},
		DropdownReadOptions:  Range{300, 800},
		DropdownClose:        Range{500, 1200},
		DropdownListHeightPx: 200,
	}
}

// NewConfigFromSettings maps the file/env settings onto an engine Config.
// A non-zero Seed pins the random source; otherwise Rng stays nil.
func NewConfigFromSettings(s config.HumanoidConfig) Config {
	c := DefaultConfig()
	r := func(rc config.RangeConfig) Range { return Range{MinMs: rc.MinMs, MaxMs: rc.MaxMs} }

	c.ThinkingPauseProbability = s.ThinkingPauseProbability
	c.CognitivePause = r(s.CognitivePause)

	t := s.Typing
	c.PreTyping = r(t.PreTyping)
	c.FastKey = r(t.FastKey)
	c.DefaultKey = r(t.DefaultKey)
	c.SlowKey = r(t.SlowKey)
	c.Correction = r(t.Correction)
	c.Burst = r(t.Burst)
	c.MicroPause = r(t.MicroPause)
	c.ReviewPause = r(t.ReviewPause)
	if t.FastKeys != "" {
		c.FastKeys = t.FastKeys
	}
	c.SpeedMultiplierMin = t.SpeedMultiplierMin
	c.SpeedMultiplierMax = t.SpeedMultiplierMax
	c.ErrorRateMax = t.ErrorRateMax
	c.BurstModeProbability = t.BurstModeProbability
	c.BurstKeyProbability = t.BurstKeyProbability
	c.MicroPauseProbability = t.MicroPauseProbability

	g := s.Gesture
	c.MoveProbabilityMin = g.MoveProbabilityMin
	c.MoveProbabilityMax = g.MoveProbabilityMax
	c.ScrollProbabilityMin = g.ScrollProbabilityMin
	c.ScrollProbabilityMax = g.ScrollProbabilityMax
	c.CorrectionProbability = g.CorrectionProbability
	c.CorrectionRadiusPx = g.CorrectionRadiusPx
	c.ScrollDownProbability = g.ScrollDownProbability
	c.ScrollDistancePx = r(g.ScrollDistancePx)
	c.GestureMinSteps = g.MinSteps
	c.GestureMaxSteps = g.MaxSteps
	c.GestureRegion = Region{MinX: g.RegionMinX, MaxX: g.RegionMaxX, MinY: g.RegionMinY, MaxY: g.RegionMaxY}

	k := s.Click
	c.ClickMaxRetries = k.MaxRetries
	c.ClickTimeout = k.Timeout
	c.ClickOffsetMin = k.OffsetMinFraction
	c.ClickOffsetMax = k.OffsetMaxFraction
	c.ClickMinSteps = k.MinSteps
	c.ClickMaxSteps = k.MaxSteps
	c.PreClick = r(k.PreClick)
	c.PostClick = r(k.PostClick)
	c.RetryBackoff = r(k.RetryBackoff)

	c.ReadMinRounds = s.Read.MinRounds
	c.ReadMaxRounds = s.Read.MaxRounds
	c.ReadScan = r(s.Read.Scan)
	c.ReadTerminal = r(s.Read.Terminal)

	c.DropdownOpen = r(s.Dropdown.Open)
	c.DropdownReadOptions = r(s.Dropdown.ReadOptions)
	c.DropdownClose = r(s.Dropdown.Close)

	if s.Seed != 0 {
		c.Rng = NewSeededSource(s.Seed)
	}
	return c
}
