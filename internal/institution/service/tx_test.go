package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
)

func TestShardedTx(t *testing.T) {
	t.Run("cancelled context never runs fn", func(t *testing.T) {
		tx := NewShardedTx(newStores())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := tx.RunInTx(ctx, id.NewInstitutionID(), func(context.Context, Stores) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeTimeout, dErrors.CodeOf(err))
		assert.False(t, called)
	})

	t.Run("waiting past the deadline times out", func(t *testing.T) {
		tx := NewShardedTx(newStores())
		key := id.NewInstitutionID()
		holding := make(chan struct{})
		release := make(chan struct{})

		go func() {
			_ = tx.RunInTx(context.Background(), key, func(context.Context, Stores) error {
				close(holding)
				<-release
				return nil
			})
		}()
		<-holding

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		go func() {
			<-ctx.Done()
			close(release)
		}()

		err := tx.RunInTx(ctx, key, func(context.Context, Stores) error { return nil })
		assert.Equal(t, dErrors.CodeTimeout, dErrors.CodeOf(err))
	})

	t.Run("same key is serialized", func(t *testing.T) {
		tx := NewShardedTx(newStores())
		key := id.NewInstitutionID()
		var inside, peak int32

		done := make(chan struct{})
		for range 8 {
			go func() {
				_ = tx.RunInTx(context.Background(), key, func(context.Context, Stores) error {
					n := atomic.AddInt32(&inside, 1)
					if n > atomic.LoadInt32(&peak) {
						atomic.StoreInt32(&peak, n)
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt32(&inside, -1)
					return nil
				})
				done <- struct{}{}
			}()
		}
		for range 8 {
			<-done
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
	})

	t.Run("fn error is returned unchanged", func(t *testing.T) {
		tx := NewShardedTx(newStores())
		want := dErrors.New(dErrors.CodeInsufficientBalance, "short")
		err := tx.RunInTx(context.Background(), id.NewInstitutionID(), func(context.Context, Stores) error { return want })
		assert.Same(t, want, err)
	})
}
