// FILE: ./internal/humanoid/mocks_test.go
package humanoid

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
)

// callLog records driver and element calls in order so tests can compare
// whole sequences.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// mockDriver implements Driver. Waits are recorded, never slept.
// If set, the Mock* overrides replace the default behavior; they may call
// the corresponding Default* method.
type mockDriver struct {
	log   *callLog
	mu    sync.Mutex
	waits []time.Duration

	MockWait          func(ctx context.Context, d time.Duration) error
	MockPointerMoveTo func(ctx context.Context, x, y float64, steps int) error
	MockPointerScroll func(ctx context.Context, dx, dy float64) error
}

func newMockDriver(log *callLog) *mockDriver {
	if log == nil {
		log = &callLog{}
	}
	return &mockDriver{log: log}
}

func (m *mockDriver) Wait(ctx context.Context, d time.Duration) error {
	if m.MockWait != nil {
		return m.MockWait(ctx, d)
	}
	return m.DefaultWait(ctx, d)
}

func (m *mockDriver) DefaultWait(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	m.waits = append(m.waits, d)
	m.mu.Unlock()
	m.log.add("wait %dms", d.Milliseconds())
	return nil
}

func (m *mockDriver) PointerMoveTo(ctx context.Context, x, y float64, steps int) error {
	if m.MockPointerMoveTo != nil {
		return m.MockPointerMoveTo(ctx, x, y, steps)
	}
	m.log.add("move %.0f,%.0f/%d", x, y, steps)
	return nil
}

func (m *mockDriver) PointerScroll(ctx context.Context, dx, dy float64) error {
	if m.MockPointerScroll != nil {
		return m.MockPointerScroll(ctx, dx, dy)
	}
	m.log.add("scroll %.0f", dy)
	return nil
}

func (m *mockDriver) recordedWaits() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.waits))
	copy(out, m.waits)
	return out
}

func (m *mockDriver) totalWait() time.Duration {
	var total time.Duration
	for _, w := range m.recordedWaits() {
		total += w
	}
	return total
}

// mockElement implements Element.
type mockElement struct {
	name string
	log  *callLog
	box  *schemas.BoundingBox

	mu         sync.Mutex
	typed      []rune
	clicks     int
	boxCalls   int
	clickOpts  []ClickOptions
	clearErr   error
	enterErr   error
	failClicks int // number of leading Click calls that fail
	clickErr   error
	boxErr     error

	MockClick func(ctx context.Context, opts ClickOptions) error
}

func newMockElement(name string, log *callLog) *mockElement {
	if log == nil {
		log = &callLog{}
	}
	return &mockElement{
		name:     name,
		log:      log,
		box:      &schemas.BoundingBox{X: 0, Y: 0, Width: 100, Height: 40},
		clickErr: fmt.Errorf("%s: not interactable", name),
	}
}

func (e *mockElement) Clear(ctx context.Context) error {
	e.log.add("%s.clear", e.name)
	return e.clearErr
}

func (e *mockElement) EnterCharacter(ctx context.Context, ch rune) error {
	e.log.add("%s.enter %q", e.name, ch)
	if e.enterErr != nil {
		return e.enterErr
	}
	e.mu.Lock()
	e.typed = append(e.typed, ch)
	e.mu.Unlock()
	return nil
}

func (e *mockElement) Click(ctx context.Context, opts ClickOptions) error {
	e.mu.Lock()
	e.clicks++
	n := e.clicks
	e.clickOpts = append(e.clickOpts, opts)
	e.mu.Unlock()
	e.log.add("%s.click", e.name)

	if e.MockClick != nil {
		return e.MockClick(ctx, opts)
	}
	if n <= e.failClicks {
		return e.clickErr
	}
	return nil
}

func (e *mockElement) BoundingBox(ctx context.Context) (*schemas.BoundingBox, error) {
	e.mu.Lock()
	e.boxCalls++
	e.mu.Unlock()
	if e.boxErr != nil {
		return nil, e.boxErr
	}
	if e.box == nil {
		return nil, nil
	}
	b := *e.box
	return &b, nil
}

func (e *mockElement) clickCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

func (e *mockElement) typedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.typed)
}

// stubSource pins every draw: Intn always returns the lowest value and
// Float64 sits just below one, so no probabilistic event fires.
type stubSource struct {
	f float64
}

func (s stubSource) Float64() float64 { return s.f }
func (s stubSource) Intn(n int) int   { return 0 }

// newStubHumanoid builds a Humanoid whose every range resolves to its minimum.
func newStubHumanoid(t *testing.T, d Driver) *Humanoid {
	cfg := DefaultConfig()
	cfg.Rng = stubSource{f: 0.999}
	return New(cfg, zaptest.NewLogger(t), d)
}

// setupEngineTest returns a seeded Humanoid and its mocks sharing one call log.
func setupEngineTest(t *testing.T, seed int64) (*Humanoid, *mockDriver, *callLog) {
	log := &callLog{}
	d := newMockDriver(log)
	h := NewTestHumanoid(d, seed)
	return h, d, log
}
