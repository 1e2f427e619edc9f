// internal/browser/cdp_element.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
	"github.com/xkilldash9x/scalpel-humanoid/internal/humanoid"
)

const (
	keyEventTimeout     = 10 * time.Second
	geometryTimeout     = 10 * time.Second
	defaultClickTimeout = 5 * time.Second
)

// cdpElement implements humanoid.Element for a CSS selector. Every call
// re-queries the DOM, so the handle survives re-renders.
type cdpElement struct {
	selector       string
	logger         *zap.Logger
	actionTimeout  time.Duration
	runActionsFunc func(ctx context.Context, actions ...chromedp.Action) error
	// pointer tracks where the press happened so the next move starts there.
	pointer *cdpDriver
}

var _ humanoid.Element = (*cdpElement)(nil)

// run executes actions under timeout, translating a local deadline into a
// descriptive error.
func (e *cdpElement) run(ctx context.Context, op string, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := e.runActionsFunc(opCtx, actions...)
	if err == nil {
		return nil
	}
	if opCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		e.logger.Debug("cdpElement operation timed out.", zap.String("op", op), zap.Duration("timeout", timeout))
		return fmt.Errorf("%s on '%s' timed out after %v: %w", op, e.selector, timeout, opCtx.Err())
	}
	return fmt.Errorf("%s on '%s' failed: %w", op, e.selector, err)
}

// Clear waits for the element to be visible, then empties its value.
func (e *cdpElement) Clear(ctx context.Context) error {
	return e.run(ctx, "clear", e.actionTimeout,
		chromedp.WaitVisible(e.selector, chromedp.ByQuery),
		chromedp.Clear(e.selector, chromedp.ByQuery),
	)
}

// EnterCharacter sends exactly one keystroke to the element.
func (e *cdpElement) EnterCharacter(ctx context.Context, ch rune) error {
	return e.run(ctx, "send key", keyEventTimeout,
		chromedp.SendKeys(e.selector, string(ch), chromedp.ByQuery),
	)
}

// Click waits for the element to be visible, then presses and releases the
// left button at (opts.X, opts.Y). Without a point it falls back to the
// element's centre. opts.Timeout bounds the whole attempt.
func (e *cdpElement) Click(ctx context.Context, opts humanoid.ClickOptions) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultClickTimeout
	}
	if opts.X == 0 && opts.Y == 0 {
		return e.run(ctx, "click", timeout,
			chromedp.Click(e.selector, chromedp.ByQuery, chromedp.NodeVisible),
		)
	}

	press := schemas.MouseEventData{
		Type:       schemas.MousePress,
		X:          opts.X,
		Y:          opts.Y,
		Button:     schemas.ButtonLeft,
		Buttons:    1,
		ClickCount: 1,
	}
	release := press
	release.Type = schemas.MouseRelease
	release.Buttons = 0

	err := e.run(ctx, "click", timeout,
		chromedp.WaitVisible(e.selector, chromedp.ByQuery),
		mouseEventParams(press),
		mouseEventParams(release),
	)
	if err != nil {
		return err
	}
	if e.pointer != nil {
		e.pointer.setPosition(opts.X, opts.Y)
	}
	return nil
}

// BoundingBox scrolls the element into view and returns its border box in
// viewport coordinates, or nil when it has no layout.
func (e *cdpElement) BoundingBox(ctx context.Context) (*schemas.BoundingBox, error) {
	var model *dom.BoxModel
	err := e.run(ctx, "box model", geometryTimeout,
		chromedp.ScrollIntoView(e.selector, chromedp.ByQuery),
		chromedp.Dimensions(e.selector, &model, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}
	box, ok := schemas.BoxFromQuad(model.Border)
	if !ok {
		return nil, nil
	}
	return &box, nil
}
