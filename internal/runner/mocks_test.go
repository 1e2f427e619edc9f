// internal/runner/mocks_test.go
package runner

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
	"github.com/xkilldash9x/scalpel-humanoid/internal/humanoid"
)

// MockEngine is a mock implementation of the Engine interface.
type MockEngine struct {
	mock.Mock
}

var _ Engine = (*MockEngine)(nil)

func (m *MockEngine) Delay(ctx context.Context, minMs, maxMs int, label string) error {
	return m.Called(ctx, minMs, maxMs, label).Error(0)
}

func (m *MockEngine) CognitivePause(ctx context.Context, label string) error {
	return m.Called(ctx, label).Error(0)
}

func (m *MockEngine) Type(ctx context.Context, el humanoid.Element, text, label string) error {
	return m.Called(ctx, el, text, label).Error(0)
}

func (m *MockEngine) RandomGesture(ctx context.Context, label string) humanoid.GestureResult {
	return m.Called(ctx, label).Get(0).(humanoid.GestureResult)
}

func (m *MockEngine) Click(ctx context.Context, el humanoid.Element, label string, maxRetries int) humanoid.ClickResult {
	return m.Called(ctx, el, label, maxRetries).Get(0).(humanoid.ClickResult)
}

func (m *MockEngine) ReadPage(ctx context.Context, label string) error {
	return m.Called(ctx, label).Error(0)
}

func (m *MockEngine) SelectDropdown(ctx context.Context, trigger, option humanoid.Element, label string) humanoid.ClickResult {
	return m.Called(ctx, trigger, option, label).Get(0).(humanoid.ClickResult)
}

func (m *MockEngine) TypingBudget(n int) time.Duration {
	return m.Called(n).Get(0).(time.Duration)
}

// MockPage is a mock implementation of the Page interface. Element handles
// are plain values keyed by selector so expectations can match on them.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockPage) Element(selector string) humanoid.Element {
	return fakeElement(selector)
}

// fakeElement is an inert element handle identified by its selector.
type fakeElement string

func (fakeElement) Clear(context.Context) error                        { return nil }
func (fakeElement) EnterCharacter(context.Context, rune) error         { return nil }
func (fakeElement) Click(context.Context, humanoid.ClickOptions) error { return nil }
func (fakeElement) BoundingBox(context.Context) (*schemas.BoundingBox, error) {
	return &schemas.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}, nil
}
