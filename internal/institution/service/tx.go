package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for a mutation on one
// institution. Implementations either wrap a database transaction or, in
// memory, hold a lock for the institution for the duration of fn.
type StoreTx interface {
	RunInTx(ctx context.Context, key id.InstitutionID, fn func(ctx context.Context, st Stores) error) error
}

const numInstitutionShards = 128

const defaultTxTimeout = 5 * time.Second

// ShardedTx serializes mutations per institution with sharded mutexes.
// In-memory stores have no rollback, so callers must finish every check
// before their first write.
type ShardedTx struct {
	shards  [numInstitutionShards]sync.Mutex
	stores  Stores
	timeout time.Duration
}

func NewShardedTx(stores Stores) *ShardedTx {
	return &ShardedTx{stores: stores, timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key id.InstitutionID, fn func(ctx context.Context, st Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := &t.shards[shardFor(key)]
	shard.Lock()
	defer shard.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.stores)
}

func shardFor(key id.InstitutionID) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return h.Sum32() % numInstitutionShards
}
