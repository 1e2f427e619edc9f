// internal/humanoid/clickmodel.go
package humanoid

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

var (
	// ErrBoundingBoxUnavailable is reported when an element has no usable layout box.
	ErrBoundingBoxUnavailable = errors.New("humanoid: element bounding box unavailable")
	// ErrNilElement is returned when an operation receives a nil element handle.
	ErrNilElement = errors.New("humanoid: nil element")
)

// ClickOutcome tags the result of a click protocol run.
type ClickOutcome int

const (
	ClickSucceeded ClickOutcome = iota
	ClickFailed
)

func (o ClickOutcome) String() string {
	switch o {
	case ClickSucceeded:
		return "succeeded"
	case ClickFailed:
		return "failed"
	default:
		return fmt.Sprintf("ClickOutcome(%d)", int(o))
	}
}

// ClickResult is the outcome of Click. Transient failures are reported here
// rather than as an error return.
type ClickResult struct {
	Outcome  ClickOutcome
	Attempts int
	Err      error
}

// Succeeded builds a successful result after n attempts.
func Succeeded(n int) ClickResult {
	return ClickResult{Outcome: ClickSucceeded, Attempts: n}
}

// FailedAfterRetries builds a failed result carrying the last attempt's error.
func FailedAfterRetries(n int, err error) ClickResult {
	return ClickResult{Outcome: ClickFailed, Attempts: n, Err: err}
}

// OK reports whether the click landed.
func (r ClickResult) OK() bool {
	return r.Outcome == ClickSucceeded
}

// clickTarget picks a point inside box at a random fraction of its size,
// staying away from the edges.
func (h *Humanoid) clickTarget(box schemas.BoundingBox) (float64, float64) {
	cfg := h.config
	fx := h.between(cfg.ClickOffsetMin, cfg.ClickOffsetMax)
	fy := h.between(cfg.ClickOffsetMin, cfg.ClickOffsetMax)
	return box.X + box.Width*fx, box.Y + box.Height*fy
}

// Click runs the retrying click protocol against el. maxRetries <= 0 uses
// the configured default.
func (h *Humanoid) Click(ctx context.Context, el Element, label string, maxRetries int) ClickResult {
	if el == nil {
		return FailedAfterRetries(0, ErrNilElement)
	}
	cfg := h.config
	if maxRetries <= 0 {
		maxRetries = cfg.ClickMaxRetries
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	logger := h.log(label, observability.CategoryClick)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = h.clickOnce(ctx, el, label, logger)
		if lastErr == nil {
			if err := h.pause(ctx, cfg.PostClick, label, observability.CategoryClick); err != nil {
				// The click itself landed.
				logger.Debug("post-click pause interrupted", zap.Error(err))
			}
			logger.Debug("click succeeded", zap.Int("attempt", attempt))
			return Succeeded(attempt)
		}

		logger.Debug("click attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
		if ctx.Err() != nil {
			return FailedAfterRetries(attempt, ctx.Err())
		}
		if attempt < maxRetries {
			if err := h.pause(ctx, cfg.RetryBackoff, label, observability.CategoryClick); err != nil {
				return FailedAfterRetries(attempt, err)
			}
		}
	}

	logger.Warn("click failed after retries", zap.Int("attempts", maxRetries), zap.Error(lastErr))
	return FailedAfterRetries(maxRetries, lastErr)
}

// clickOnce performs a single attempt: locate, move, hesitate, click.
func (h *Humanoid) clickOnce(ctx context.Context, el Element, label string, logger *zap.Logger) error {
	cfg := h.config

	box, err := el.BoundingBox(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBoundingBoxUnavailable, err)
	}
	if box == nil || box.Empty() {
		return ErrBoundingBoxUnavailable
	}

	x, y := h.clickTarget(*box)
	steps := h.intBetween(cfg.ClickMinSteps, cfg.ClickMaxSteps)
	if err := h.driver.PointerMoveTo(ctx, x, y, steps); err != nil {
		// Pointer motion is cosmetic; the click is still attempted.
		logger.Debug("pointer move before click failed", zap.Error(err))
	}

	if err := h.pause(ctx, cfg.PreClick, label, observability.CategoryClick); err != nil {
		return err
	}
	if err := el.Click(ctx, ClickOptions{Timeout: cfg.ClickTimeout, X: x, Y: y}); err != nil {
		return fmt.Errorf("humanoid: click failed: %w", err)
	}
	return nil
}
