// FILE: ./internal/humanoid/config_test.go
package humanoid

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
)

func TestNewConfigFromSettings_MatchesDefaults(t *testing.T) {
	settings := config.NewDefaultConfig().Humanoid()
	got := NewConfigFromSettings(settings)

	if diff := cmp.Diff(DefaultConfig(), got, cmpopts.IgnoreFields(Config{}, "Rng")); diff != "" {
		t.Errorf("settings defaults drifted from engine defaults (-want +got):\n%s", diff)
	}
	assert.Nil(t, got.Rng, "zero seed leaves the source unset")
}

func TestNewConfigFromSettings_Overrides(t *testing.T) {
	settings := config.NewDefaultConfig().Humanoid()
	settings.Seed = 42
	settings.Typing.FastKey = config.RangeConfig{MinMs: 10, MaxMs: 20}
	settings.Typing.FastKeys = ""
	settings.Click.MaxRetries = 7

	got := NewConfigFromSettings(settings)
	assert.Equal(t, Range{10, 20}, got.FastKey)
	assert.Equal(t, "etaoinshr", got.FastKeys, "empty fast key set keeps the default")
	assert.Equal(t, 7, got.ClickMaxRetries)
	require.NotNil(t, got.Rng)

	// A pinned seed makes two engines draw identically.
	a := New(got, nil, newMockDriver(nil))
	b := New(NewConfigFromSettings(settings), nil, newMockDriver(nil))
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.PlanGesture(), b.PlanGesture())
	}
}

func TestNew_NilSourceIsSeeded(t *testing.T) {
	d := newMockDriver(nil)
	h := New(DefaultConfig(), nil, d)
	require.NoError(t, h.Delay(context.Background(), 1, 2, ""))
	assert.Len(t, d.recordedWaits(), 1)
}
