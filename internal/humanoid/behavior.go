// internal/humanoid/behavior.go
package humanoid

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

// ReadPage simulates a user skimming the current page: a few rounds of idle
// gestures and scanning pauses followed by a longer dwell.
func (h *Humanoid) ReadPage(ctx context.Context, label string) error {
	cfg := h.config
	logger := h.log(label, observability.CategoryRead)

	rounds := h.intBetween(cfg.ReadMinRounds, cfg.ReadMaxRounds)
	for i := 0; i < rounds; i++ {
		_ = h.RandomGesture(ctx, label)
		if err := h.pause(ctx, cfg.ReadScan, label, observability.CategoryRead); err != nil {
			return fmt.Errorf("humanoid: reading interrupted: %w", err)
		}
	}
	if err := h.pause(ctx, cfg.ReadTerminal, label, observability.CategoryRead); err != nil {
		return fmt.Errorf("humanoid: reading interrupted: %w", err)
	}

	logger.Info("page read", zap.Int("rounds", rounds))
	return nil
}

// SelectDropdown opens a dropdown via trigger and picks option. It stops at
// the first failed click, so option is never touched if the trigger fails.
func (h *Humanoid) SelectDropdown(ctx context.Context, trigger, option Element, label string) ClickResult {
	cfg := h.config
	logger := h.log(label, observability.CategoryDropdown)

	opened := h.Click(ctx, trigger, label, 0)
	if !opened.OK() {
		logger.Warn("dropdown trigger click failed", zap.Error(opened.Err))
		return opened
	}
	if err := h.pause(ctx, cfg.DropdownOpen, label, observability.CategoryDropdown); err != nil {
		return FailedAfterRetries(opened.Attempts, err)
	}

	// Glance over the opened list rather than the whole page.
	_ = h.PerformGesture(ctx, h.planGestureIn(h.dropdownRegion(ctx, trigger)), label)

	if err := h.pause(ctx, cfg.DropdownReadOptions, label, observability.CategoryDropdown); err != nil {
		return FailedAfterRetries(opened.Attempts, err)
	}

	chosen := h.Click(ctx, option, label, 0)
	if !chosen.OK() {
		logger.Warn("dropdown option click failed", zap.Error(chosen.Err))
		return chosen
	}
	if err := h.pause(ctx, cfg.DropdownClose, label, observability.CategoryDropdown); err != nil {
		logger.Debug("dropdown close pause interrupted", zap.Error(err))
	}

	logger.Info("dropdown option selected", zap.Int("attempts", chosen.Attempts))
	return chosen
}

// dropdownRegion is the area just below the trigger where an opened list is
// expected. It falls back to the configured gesture region.
func (h *Humanoid) dropdownRegion(ctx context.Context, trigger Element) Region {
	box, err := trigger.BoundingBox(ctx)
	if err != nil || box == nil || box.Empty() {
		return h.config.GestureRegion
	}
	top := int(box.Y + box.Height)
	return Region{
		MinX: int(box.X),
		MaxX: int(box.X + box.Width),
		MinY: top,
		MaxY: top + h.config.DropdownListHeightPx,
	}
}
