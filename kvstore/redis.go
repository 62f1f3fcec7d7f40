package kvstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// redisKeyPrefix starts every Redis key written by this package.
	redisKeyPrefix = "sonlib:"

	// redisMaxRetries bounds optimistic retries when a watched key changes.
	redisMaxRetries = 16

	redisScanBatch = 512
)

// redisEngine stores each record as one Redis string. Updates run under
// WATCH on the touched keys and commit in MULTI/EXEC, retrying when another
// client wins the race.
type redisEngine struct {
	client *redis.Client
	prefix string
	owner  bool
}

// NewRedis returns a Store on client. The store owns the client and closes
// it on Close.
func NewRedis(client *redis.Client, opts ...Option) Store {
	o := buildOptions(opts)

	return newStore(newRedisEngine(client, o.Namespace, true), KindRedis, o)
}

func newRedisEngine(client *redis.Client, namespace string, owner bool) *redisEngine {
	return &redisEngine{client: client, prefix: redisKeyPrefix + namespace + ":", owner: owner}
}

func (e *redisEngine) key(k int64) string {
	return e.prefix + strconv.FormatInt(k, 10)
}

// getter is the part of *redis.Client and *redis.Tx a reader needs.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (e *redisEngine) reader(ctx context.Context, c getter) func(int64) ([]byte, bool, error) {
	return func(key int64) ([]byte, bool, error) {
		v, err := c.Get(ctx, e.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}

		return v, true, nil
	}
}

func (e *redisEngine) view(ctx context.Context, _ []int64, fn func(txn) error) error {
	return fn(newOverlay(e.reader(ctx, e.client)))
}

func (e *redisEngine) update(ctx context.Context, keys []int64, fn func(txn) error) error {
	watched := make([]string, len(keys))
	for i, k := range keys {
		watched[i] = e.key(k)
	}
	attempt := func(tx *redis.Tx) error {
		ov := newOverlay(e.reader(ctx, tx))
		if err := fn(ov); err != nil {
			return err
		}
		if len(ov.order) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return ov.flush(
				func(key int64, value []byte) error {
					return pipe.Set(ctx, e.key(key), value, 0).Err()
				},
				func(key int64) error {
					return pipe.Del(ctx, e.key(key)).Err()
				})
		})

		return err
	}
	for i := 0; i < redisMaxRetries; i++ {
		err := e.client.Watch(ctx, attempt, watched...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return errors.Newf("redis: update of %d keys lost %d races", len(keys), redisMaxRetries)
}

func (e *redisEngine) count(ctx context.Context) (int64, error) {
	match := globEscape(e.prefix) + "*"
	var (
		n      int64
		cursor uint64
	)
	for {
		keys, next, err := e.client.Scan(ctx, cursor, match, redisScanBatch).Result()
		if err != nil {
			return 0, err
		}
		n += int64(len(keys))
		if next == 0 {
			return n, nil
		}
		cursor = next
	}
}

func (e *redisEngine) close() error {
	if !e.owner {
		return nil
	}

	return e.client.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func globEscape(s string) string { return globEscaper.Replace(s) }
