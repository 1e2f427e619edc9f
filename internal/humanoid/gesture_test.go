// FILE: ./internal/humanoid/gesture_test.go
package humanoid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanGesture_Bounds(t *testing.T) {
	h, _, _ := setupEngineTest(t, 2024)
	cfg := h.Config()

	for i := 0; i < 2000; i++ {
		d := h.PlanGesture()
		if d.Move != nil {
			assert.GreaterOrEqual(t, d.Move.X, cfg.GestureRegion.MinX)
			assert.LessOrEqual(t, d.Move.X, cfg.GestureRegion.MaxX)
			assert.GreaterOrEqual(t, d.Move.Y, cfg.GestureRegion.MinY)
			assert.LessOrEqual(t, d.Move.Y, cfg.GestureRegion.MaxY)
			assert.GreaterOrEqual(t, d.Move.Steps, 2)
			assert.LessOrEqual(t, d.Move.Steps, 10)
		} else {
			assert.Nil(t, d.Correction, "a correction never appears without a move")
		}
		if c := d.Correction; c != nil {
			assert.InDelta(t, d.Move.X, c.X, 20)
			assert.InDelta(t, d.Move.Y, c.Y, 20)
			assert.GreaterOrEqual(t, c.Steps, 1)
			assert.LessOrEqual(t, c.Steps, max(1, d.Move.Steps-1))
		}
		if d.Scroll != nil {
			mag := abs(d.Scroll.DeltaY)
			assert.GreaterOrEqual(t, mag, 100)
			assert.LessOrEqual(t, mag, 500)
		}
	}
}

func TestPlanGesture_AllOutcomesOccur(t *testing.T) {
	h, _, _ := setupEngineTest(t, 77)

	var none, moveOnly, scrollOnly, both, corrections, up, down int
	for i := 0; i < 2000; i++ {
		d := h.PlanGesture()
		switch {
		case d.Move == nil && d.Scroll == nil:
			none++
		case d.Move != nil && d.Scroll == nil:
			moveOnly++
		case d.Move == nil && d.Scroll != nil:
			scrollOnly++
		default:
			both++
		}
		if d.Correction != nil {
			corrections++
		}
		if d.Scroll != nil {
			if d.Scroll.DeltaY > 0 {
				down++
			} else {
				up++
			}
		}
	}

	assert.Positive(t, none)
	assert.Positive(t, moveOnly)
	assert.Positive(t, scrollOnly)
	assert.Positive(t, both)
	assert.Positive(t, corrections)
	assert.Greater(t, down, up, "scrolling favours downward")
}

func TestPerformGesture(t *testing.T) {
	desc := GestureDescriptor{
		Move:       &MovePlan{X: 400, Y: 300, Steps: 6},
		Correction: &MovePlan{X: 410, Y: 295, Steps: 2},
		Scroll:     &ScrollPlan{DeltaY: -250},
	}

	t.Run("all parts", func(t *testing.T) {
		h, _, log := setupEngineTest(t, 1)
		res := h.PerformGesture(context.Background(), desc, "browse")

		require.NoError(t, res.Err)
		assert.Equal(t, []string{"move 400,300/6", "move 410,295/2", "scroll -250"}, log.snapshot())
		assert.Equal(t, "move to (400,300) in 6 steps, correct to (410,295), scroll up 250px", res.Summary())
	})

	t.Run("failures are captured", func(t *testing.T) {
		h, d, log := setupEngineTest(t, 1)
		moveErr := errors.New("pointer lost")
		d.MockPointerMoveTo = func(ctx context.Context, x, y float64, steps int) error { return moveErr }

		var res GestureResult
		assert.NotPanics(t, func() { res = h.PerformGesture(context.Background(), desc, "") })
		assert.ErrorIs(t, res.Err, moveErr)
		// The correction is skipped once its move failed; the scroll still runs.
		assert.Equal(t, []string{"scroll -250"}, log.snapshot())
		assert.Equal(t, "scroll up 250px", res.Summary())
	})

	t.Run("empty descriptor", func(t *testing.T) {
		h, _, log := setupEngineTest(t, 1)
		res := h.PerformGesture(context.Background(), GestureDescriptor{}, "")
		assert.True(t, res.Descriptor.Empty())
		assert.NoError(t, res.Err)
		assert.Empty(t, res.Summary())
		assert.Empty(t, log.snapshot())
	})
}

func TestRandomGesture_NeverEscalates(t *testing.T) {
	h, d, _ := setupEngineTest(t, 9)
	d.MockPointerMoveTo = func(ctx context.Context, x, y float64, steps int) error { return errors.New("boom") }
	d.MockPointerScroll = func(ctx context.Context, dx, dy float64) error { return errors.New("boom") }

	failures := 0
	for i := 0; i < 200; i++ {
		res := h.RandomGesture(context.Background(), "idle")
		if !res.Descriptor.Empty() {
			require.Error(t, res.Err)
			failures++
		}
		assert.Empty(t, res.Performed)
	}
	assert.Positive(t, failures)
}
