// internal/humanoid/interface.go
package humanoid

import (
	"context"
	"time"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
)

// Driver is the low-level page capability the engine drives. Every call may
// fail; pointer failures are treated as cosmetic by the engine.
type Driver interface {
	// Wait suspends for d, returning early with ctx.Err() on cancellation.
	Wait(ctx context.Context, d time.Duration) error
	// PointerMoveTo moves the virtual pointer to (x, y) along an interpolated path of steps segments.
	PointerMoveTo(ctx context.Context, x, y float64, steps int) error
	// PointerScroll dispatches a wheel event at the current pointer position.
	PointerScroll(ctx context.Context, dx, dy float64) error
}

// ClickOptions configures a single click attempt. Visibility and
// interactability checks are never bypassed.
type ClickOptions struct {
	Timeout time.Duration
	// X and Y are the viewport coordinates to press, normally where the
	// pointer was just moved. Both zero lets the element pick its centre.
	X, Y float64
}

// Element is a handle to a located DOM element.
type Element interface {
	Clear(ctx context.Context) error
	// EnterCharacter submits exactly one keystroke with no driver-side delay.
	EnterCharacter(ctx context.Context, ch rune) error
	Click(ctx context.Context, opts ClickOptions) error
	// BoundingBox returns nil (and no error) when the element has no layout box.
	BoundingBox(ctx context.Context) (*schemas.BoundingBox, error)
}

// Controller defines the high-level interface for human-like interactions.
// This is the interface implemented by the Humanoid struct itself.
type Controller interface {
	Delay(ctx context.Context, minMs, maxMs int, label string) error
	CognitivePause(ctx context.Context, label string) error
	Type(ctx context.Context, el Element, text string, label string) error
	RandomGesture(ctx context.Context, label string) GestureResult
	Click(ctx context.Context, el Element, label string, maxRetries int) ClickResult
	ReadPage(ctx context.Context, label string) error
	SelectDropdown(ctx context.Context, trigger, option Element, label string) ClickResult
}

var _ Controller = (*Humanoid)(nil)
