// internal/humanoid/keyboard.go
package humanoid

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

// TypingPersonality is drawn once per Type call and stays fixed for every
// character of that call.
type TypingPersonality struct {
	SpeedMultiplier float64
	ErrorRate       float64
	Burst           bool
}

// Validate checks the personality against the configured bounds.
func (p TypingPersonality) Validate(cfg Config) error {
	if p.SpeedMultiplier < cfg.SpeedMultiplierMin || p.SpeedMultiplier > cfg.SpeedMultiplierMax {
		return fmt.Errorf("humanoid: speed multiplier %.3f outside [%.2f, %.2f]",
			p.SpeedMultiplier, cfg.SpeedMultiplierMin, cfg.SpeedMultiplierMax)
	}
	if p.ErrorRate < 0 || p.ErrorRate > cfg.ErrorRateMax {
		return fmt.Errorf("humanoid: error rate %.3f outside [0, %.2f]", p.ErrorRate, cfg.ErrorRateMax)
	}
	return nil
}

// keyClass buckets a character by how quickly it is usually typed.
type keyClass int

const (
	keyDefault keyClass = iota
	keyFast
	keySlow
)

func (k keyClass) String() string {
	switch k {
	case keyFast:
		return "fast"
	case keySlow:
		return "slow"
	default:
		return "default"
	}
}

// drawPersonality samples a fresh typing personality.
func (h *Humanoid) drawPersonality() TypingPersonality {
	cfg := h.config
	return TypingPersonality{
		SpeedMultiplier: h.between(cfg.SpeedMultiplierMin, cfg.SpeedMultiplierMax),
		ErrorRate:       h.between(0, cfg.ErrorRateMax),
		Burst:           h.chance(cfg.BurstModeProbability),
	}
}

// classifyKey returns the timing class of ch. Letters in FastKeys are fast
// regardless of case, other letters are default and everything else is slow.
func (h *Humanoid) classifyKey(ch rune) keyClass {
	if !unicode.IsLetter(ch) {
		return keySlow
	}
	if strings.ContainsRune(h.config.FastKeys, unicode.ToLower(ch)) {
		return keyFast
	}
	return keyDefault
}

// characterDelay picks the pacing range that follows the character at index.
func (h *Humanoid) characterDelay(p TypingPersonality, index int, ch rune) Range {
	cfg := h.config

	var r Range
	switch h.classifyKey(ch) {
	case keyFast:
		r = cfg.FastKey
	case keySlow:
		r = cfg.SlowKey
	default:
		r = cfg.DefaultKey
	}
	r = r.scale(p.SpeedMultiplier)

	// A simulated typo only costs time; the correction is never typed out.
	if h.chance(p.ErrorRate) {
		r = cfg.Correction
	}
	if p.Burst && index > 0 && h.chance(cfg.BurstKeyProbability) {
		r = cfg.Burst.scale(p.SpeedMultiplier)
	}
	return r
}

// Type clears el and enters text one character at a time with a freshly
// drawn typing personality.
func (h *Humanoid) Type(ctx context.Context, el Element, text string, label string) error {
	return h.TypeWithPersonality(ctx, el, text, label, h.drawPersonality())
}

// TypeWithPersonality is Type with a caller supplied personality.
func (h *Humanoid) TypeWithPersonality(ctx context.Context, el Element, text string, label string, p TypingPersonality) error {
	if el == nil {
		return ErrNilElement
	}
	if err := p.Validate(h.config); err != nil {
		return err
	}
	logger := h.log(label, observability.CategoryTyping)
	cfg := h.config

	if n := invalidBytes(text); n > 0 {
		logger.Debug("invalid UTF-8 in text, typing U+FFFD in its place", zap.Int("invalid_bytes", n))
	}

	if err := el.Clear(ctx); err != nil {
		return fmt.Errorf("humanoid: failed to clear element: %w", err)
	}
	if err := h.pause(ctx, cfg.PreTyping, label, observability.CategoryTyping); err != nil {
		return err
	}

	typed := 0
	for _, ch := range text {
		if ch == 0 {
			continue
		}
		if typed > 0 && h.chance(cfg.MicroPauseProbability) {
			logger.Debug("micro pause before keystroke", zap.Int("index", typed))
			if err := h.pause(ctx, cfg.MicroPause, label, observability.CategoryTyping); err != nil {
				return err
			}
		}

		if err := el.EnterCharacter(ctx, ch); err != nil {
			return fmt.Errorf("humanoid: failed to enter character %q: %w", ch, err)
		}

		r := h.characterDelay(p, typed, ch)
		logger.Debug("keystroke",
			zap.Int("index", typed),
			zap.Stringer("class", h.classifyKey(ch)),
			zap.Float64("speed", p.SpeedMultiplier),
			zap.Float64("error_rate", p.ErrorRate),
			zap.Bool("burst", p.Burst),
		)
		if err := h.pause(ctx, r, label, observability.CategoryTyping); err != nil {
			return err
		}
		typed++
	}

	if err := h.pause(ctx, cfg.ReviewPause, label, observability.CategoryTyping); err != nil {
		return err
	}
	logger.Info("typing complete", zap.Int("characters", typed))
	return nil
}

// invalidBytes counts the bytes of text that do not decode as UTF-8.
// Each is typed as utf8.RuneError.
func invalidBytes(text string) int {
	if utf8.ValidString(text) {
		return 0
	}
	n := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			n++
		}
		i += size
	}
	return n
}

// TypingBudget is the upper bound on the time Type can spend on n
// characters, thinking pauses included.
func (h *Humanoid) TypingBudget(n int) time.Duration {
	cfg := h.config
	perChar := max(cfg.SlowKey.MaxMs, cfg.DefaultKey.MaxMs, cfg.FastKey.MaxMs)
	perChar = int(float64(perChar)*cfg.SpeedMultiplierMax) + 1
	perChar = max(perChar, cfg.Correction.MaxMs, cfg.Burst.MaxMs)
	totalMs := cfg.PreTyping.MaxMs + cfg.ReviewPause.MaxMs + n*(perChar+cfg.MicroPause.MaxMs)
	return 2 * time.Duration(totalMs) * time.Millisecond
}
