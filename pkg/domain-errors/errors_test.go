package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("HasCode matches outermost code", func(t *testing.T) {
		err := New(CodeAmountMismatch, "payment does not match fee")
		assert.True(t, HasCode(err, CodeAmountMismatch))
		assert.False(t, HasCode(err, CodeExpired))
	})

	t.Run("HasCode sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("pay fee: %w", New(CodeExpired, "fee is past due"))
		assert.True(t, HasCode(err, CodeExpired))
		assert.Equal(t, CodeExpired, CodeOf(err))
	})

	t.Run("plain errors map to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})

	t.Run("Wrap keeps cause reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to load institution")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load institution: connection reset", err.Error())
	})

	t.Run("Wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})
}
