package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextBinding(t *testing.T) {
	ctx := context.Background()

	_, ok := From(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, WithTx(ctx, nil), "nil tx leaves context untouched")

	sqlTx := &sql.Tx{}
	bound := WithTx(ctx, sqlTx)
	got, ok := From(bound)
	assert.True(t, ok)
	assert.Same(t, sqlTx, got)
	assert.Same(t, sqlTx, Conn(bound, nil))
}
