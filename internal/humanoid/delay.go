// internal/humanoid/delay.go
package humanoid

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

// Delay waits a uniformly drawn number of whole milliseconds in [minMs, maxMs].
// With ThinkingPauseProbability the sample is doubled, so the wait always lies
// in [minMs, 2*maxMs]. Negative bounds are clamped to zero and inverted bounds
// swapped. The only error is the driver's, typically context cancellation.
func (h *Humanoid) Delay(ctx context.Context, minMs, maxMs int, label string) error {
	return h.pause(ctx, Range{MinMs: minMs, MaxMs: maxMs}, label, observability.CategoryDelay)
}

// CognitivePause simulates a moment of thought between discrete actions.
func (h *Humanoid) CognitivePause(ctx context.Context, label string) error {
	return h.pause(ctx, h.config.CognitivePause, label, observability.CategoryDelay)
}

// pause is the shared implementation behind every wait the engine performs.
func (h *Humanoid) pause(ctx context.Context, r Range, label string, category observability.Category) error {
	r = r.normalize()
	ms := h.intBetween(r.MinMs, r.MaxMs)

	if h.chance(h.config.ThinkingPauseProbability) {
		ms *= 2
		if label != "" {
			h.log(label, category).Debug("thinking pause", zap.Int("delay_ms", ms))
		}
	}

	if err := h.driver.Wait(ctx, time.Duration(ms)*time.Millisecond); err != nil {
		return fmt.Errorf("humanoid: wait of %dms interrupted: %w", ms, err)
	}
	return nil
}
