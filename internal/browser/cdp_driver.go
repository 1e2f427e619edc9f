// internal/browser/cdp_driver.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
	"github.com/xkilldash9x/scalpel-humanoid/internal/humanoid"
)

// mouseEventTimeout bounds a single dispatched pointer event.
const mouseEventTimeout = 10 * time.Second

// cdpDriver is an adapter that implements the humanoid.Driver interface
// using chromedp actions.
type cdpDriver struct {
	logger         *zap.Logger
	runActionsFunc func(ctx context.Context, actions ...chromedp.Action) error // Points to Session.RunActions
	// limiter caps synthetic pointer events, like a mouse polling rate. Nil means unlimited.
	limiter *rate.Limiter

	mu   sync.Mutex
	x, y float64
}

var _ humanoid.Driver = (*cdpDriver)(nil)

func newCDPDriver(logger *zap.Logger, run func(ctx context.Context, actions ...chromedp.Action) error, limiter *rate.Limiter) *cdpDriver {
	return &cdpDriver{logger: logger, runActionsFunc: run, limiter: limiter}
}

// Wait pauses for d inside the browser context, respecting ctx.
func (d *cdpDriver) Wait(ctx context.Context, dur time.Duration) error {
	return d.runActionsFunc(ctx, chromedp.Sleep(dur))
}

// position returns the last known pointer position.
func (d *cdpDriver) position() (float64, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.x, d.y
}

func (d *cdpDriver) setPosition(x, y float64) {
	d.mu.Lock()
	d.x, d.y = x, y
	d.mu.Unlock()
}

// PointerMoveTo moves the pointer from its last known position to (x, y)
// in steps evenly spaced mouseMoved events.
func (d *cdpDriver) PointerMoveTo(ctx context.Context, x, y float64, steps int) error {
	if steps < 1 {
		steps = 1
	}
	fromX, fromY := d.position()

	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := fromX + (x-fromX)*t
		py := fromY + (y-fromY)*t

		err := d.dispatchMouseEvent(ctx, schemas.MouseEventData{
			Type:   schemas.MouseMove,
			X:      px,
			Y:      py,
			Button: schemas.ButtonNone,
		})
		if err != nil {
			return fmt.Errorf("pointer move step %d/%d: %w", i, steps, err)
		}
		d.setPosition(px, py)
	}
	return nil
}

// PointerScroll dispatches a wheel event at the current pointer position.
func (d *cdpDriver) PointerScroll(ctx context.Context, dx, dy float64) error {
	x, y := d.position()
	return d.dispatchMouseEvent(ctx, schemas.MouseEventData{
		Type:   schemas.MouseWheel,
		X:      x,
		Y:      y,
		Button: schemas.ButtonNone,
		DeltaX: dx,
		DeltaY: dy,
	})
}

// dispatchMouseEvent sends a single mouse event via CDP, waiting for the
// rate limiter first.
func (d *cdpDriver) dispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	p := mouseEventParams(data)

	opCtx, cancel := context.WithTimeout(ctx, mouseEventTimeout)
	defer cancel()

	err := d.runActionsFunc(opCtx, p)
	if err != nil && opCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		d.logger.Debug("cdpDriver mouse event timed out.", zap.Duration("timeout", mouseEventTimeout))
		return fmt.Errorf("cdpDriver: %s timed out after %v: %w", data.Type, mouseEventTimeout, opCtx.Err())
	}
	return err
}

// mouseEventParams translates a mouse event into its CDP command.
func mouseEventParams(data schemas.MouseEventData) *input.DispatchMouseEventParams {
	p := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y).
		WithButton(input.MouseButton(data.Button)).
		WithButtons(data.Buttons)
	if data.ClickCount > 0 {
		p = p.WithClickCount(int64(data.ClickCount))
	}
	// Wheel deltas are only meaningful for mouseWheel events.
	if data.Type == schemas.MouseWheel {
		p = p.WithDeltaX(data.DeltaX).WithDeltaY(data.DeltaY)
	}
	return p
}
