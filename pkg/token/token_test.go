package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bursar/pkg/domain-errors"
)

func TestArithmetic(t *testing.T) {
	t.Run("Add detects overflow", func(t *testing.T) {
		_, err := Add(MaxAmount, 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("Mul detects overflow", func(t *testing.T) {
		_, err := Mul(MaxAmount/2+1, 2)
		require.Error(t, err)

		v, err := Mul(250, 4)
		require.NoError(t, err)
		assert.Equal(t, Amount(1000), v)
	})
}

func TestFundsConservation(t *testing.T) {
	t.Run("split conserves the total", func(t *testing.T) {
		for _, cut := range []Amount{0, 1, 499, 500} {
			taken, rest, err := Mint(500).Split(cut)
			require.NoError(t, err)
			assert.Equal(t, cut, taken.Value())
			assert.Equal(t, Amount(500), taken.Value()+rest.Value())
		}
	})

	t.Run("split beyond value fails and keeps funds", func(t *testing.T) {
		taken, rest, err := Mint(10).Split(11)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		assert.True(t, taken.IsZero())
		assert.Equal(t, Amount(10), rest.Value())
	})

	t.Run("join then split round trips", func(t *testing.T) {
		joined, err := Mint(300).Join(Mint(200))
		require.NoError(t, err)
		assert.Equal(t, Amount(500), joined.Value())

		a, b, err := joined.Split(300)
		require.NoError(t, err)
		assert.Equal(t, Amount(300), a.Value())
		assert.Equal(t, Amount(200), b.Value())
	})

	t.Run("join overflow fails", func(t *testing.T) {
		_, err := Mint(MaxAmount).Join(Mint(1))
		require.Error(t, err)
	})
}
