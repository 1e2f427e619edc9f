// FILE: ./internal/humanoid/keyboard_fuzz_test.go
package humanoid

import (
	"context"
	"strings"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FuzzType_CharacterCount checks that arbitrary input is entered exactly once
// per non-zero rune, in order, and within the timing budget.
func FuzzType_CharacterCount(f *testing.F) {
	f.Add([]byte("hello world"))
	f.Add([]byte("\x00\x01\xff ünïcode ✓ 42"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		consumer := fuzz.NewConsumer(data)
		seed, err := consumer.GetInt()
		if err != nil {
			return
		}
		text, err := consumer.GetString()
		if err != nil {
			return
		}

		d := newMockDriver(nil)
		h := NewTestHumanoid(d, int64(seed))
		el := newMockElement("input", nil)

		require.NoError(t, h.Type(context.Background(), el, text, ""))

		want := []rune(strings.ReplaceAll(text, "\x00", ""))
		assert.Equal(t, string(want), el.typedText())
		assert.Len(t, el.typed, len(want))
		assert.LessOrEqual(t, d.totalWait(), h.TypingBudget(len(want)))
	})
}
