// internal/humanoid/gesture.go
package humanoid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

// MovePlan is a pointer move to (X, Y) over Steps interpolated segments.
type MovePlan struct {
	X, Y  int
	Steps int
}

// ScrollPlan is a vertical wheel scroll. Positive DeltaY scrolls down.
type ScrollPlan struct {
	DeltaY int
}

// GestureDescriptor describes one idle gesture. Any part may be absent.
type GestureDescriptor struct {
	Move       *MovePlan
	Correction *MovePlan
	Scroll     *ScrollPlan
}

// Empty reports whether the descriptor does nothing.
func (d GestureDescriptor) Empty() bool {
	return d.Move == nil && d.Scroll == nil
}

// GestureResult reports what a gesture actually did. Driver failures are
// collected in Err and never escalate.
type GestureResult struct {
	Descriptor GestureDescriptor
	Performed  []string
	Err        error
}

// Summary is a human readable account of the performed parts, or "" when
// nothing happened.
func (r GestureResult) Summary() string {
	return strings.Join(r.Performed, ", ")
}

// PlanGesture samples a gesture over the configured viewport region.
func (h *Humanoid) PlanGesture() GestureDescriptor {
	return h.planGestureIn(h.config.GestureRegion)
}

func (h *Humanoid) planGestureIn(region Region) GestureDescriptor {
	cfg := h.config
	moveProbability := h.between(cfg.MoveProbabilityMin, cfg.MoveProbabilityMax)
	scrollProbability := h.between(cfg.ScrollProbabilityMin, cfg.ScrollProbabilityMax)

	var d GestureDescriptor
	if h.chance(moveProbability) {
		move := &MovePlan{
			X:     h.intBetween(region.MinX, region.MaxX),
			Y:     h.intBetween(region.MinY, region.MaxY),
			Steps: h.intBetween(cfg.GestureMinSteps, cfg.GestureMaxSteps),
		}
		d.Move = move

		if h.chance(cfg.CorrectionProbability) {
			radius := cfg.CorrectionRadiusPx
			d.Correction = &MovePlan{
				X:     move.X + h.intBetween(-radius, radius),
				Y:     move.Y + h.intBetween(-radius, radius),
				Steps: h.intBetween(1, max(1, move.Steps-1)),
			}
		}
	}

	if h.chance(scrollProbability) {
		dist := h.intBetween(cfg.ScrollDistancePx.MinMs, cfg.ScrollDistancePx.MaxMs)
		if !h.chance(cfg.ScrollDownProbability) {
			dist = -dist
		}
		d.Scroll = &ScrollPlan{DeltaY: dist}
	}
	return d
}

// PerformGesture executes d. A correction runs only after its move landed.
func (h *Humanoid) PerformGesture(ctx context.Context, d GestureDescriptor, label string) GestureResult {
	result := GestureResult{Descriptor: d}
	logger := h.log(label, observability.CategoryGesture)
	var errs []error

	if d.Move != nil {
		m := d.Move
		if err := h.driver.PointerMoveTo(ctx, float64(m.X), float64(m.Y), m.Steps); err != nil {
			errs = append(errs, fmt.Errorf("move to (%d,%d): %w", m.X, m.Y, err))
		} else {
			result.Performed = append(result.Performed, fmt.Sprintf("move to (%d,%d) in %d steps", m.X, m.Y, m.Steps))

			if c := d.Correction; c != nil {
				if err := h.driver.PointerMoveTo(ctx, float64(c.X), float64(c.Y), c.Steps); err != nil {
					errs = append(errs, fmt.Errorf("correction to (%d,%d): %w", c.X, c.Y, err))
				} else {
					result.Performed = append(result.Performed, fmt.Sprintf("correct to (%d,%d)", c.X, c.Y))
				}
			}
		}
	}

	if d.Scroll != nil {
		if err := h.driver.PointerScroll(ctx, 0, float64(d.Scroll.DeltaY)); err != nil {
			errs = append(errs, fmt.Errorf("scroll %dpx: %w", d.Scroll.DeltaY, err))
		} else {
			direction := "down"
			if d.Scroll.DeltaY < 0 {
				direction = "up"
			}
			result.Performed = append(result.Performed, fmt.Sprintf("scroll %s %dpx", direction, abs(d.Scroll.DeltaY)))
		}
	}

	result.Err = errors.Join(errs...)
	if result.Err != nil {
		logger.Debug("gesture partially failed", zap.Error(result.Err))
	} else if summary := result.Summary(); summary != "" {
		logger.Debug("gesture", zap.String("summary", summary))
	}
	return result
}

// RandomGesture plans and performs one idle gesture. It never fails; inspect
// the result when the outcome matters.
func (h *Humanoid) RandomGesture(ctx context.Context, label string) GestureResult {
	return h.PerformGesture(ctx, h.PlanGesture(), label)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
