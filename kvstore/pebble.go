package kvstore

import (
	"bytes"
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// memPebbleDir is the directory name used on the in-memory filesystem.
const memPebbleDir = "sonlib"

// pebbleEngine keeps one namespace as a key prefix of a pebble database.
// Writers of every namespace of one database share mu, which serializes
// the read-check-write sequences pebble itself has no transactions for.
type pebbleEngine struct {
	db     *pebble.DB
	mu     *sync.Mutex
	prefix []byte
	owner  bool
}

// OpenPebble opens or creates a pebble database in dir. An empty dir keeps
// the database on an in-memory filesystem that vanishes on Close.
func OpenPebble(dir string, opts ...Option) (Store, error) {
	o := buildOptions(opts)
	db, err := openPebbleDB(dir)
	if err != nil {
		return nil, err
	}
	eng, err := newPebbleEngine(db, &sync.Mutex{}, o.Namespace, true)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newStore(eng, KindPebble, o), nil
}

func openPebbleDB(dir string) (*pebble.DB, error) {
	popts := &pebble.Options{}
	if dir == "" {
		popts.FS = vfs.NewMem()
		dir = memPebbleDir
	}
	db, err := pebble.Open(dir, popts)
	if err != nil {
		return nil, errors.Wrapf(err, "pebble: open %q", dir)
	}

	return db, nil
}

func newPebbleEngine(db *pebble.DB, mu *sync.Mutex, namespace string, owner bool) (*pebbleEngine, error) {
	if len(namespace) > 255 {
		return nil, errors.Newf("pebble: namespace of %d bytes is too long", len(namespace))
	}
	// Length-prefixed so that no namespace prefix is a prefix of another.
	prefix := append([]byte{byte(len(namespace))}, namespace...)

	return &pebbleEngine{db: db, mu: mu, prefix: prefix, owner: owner}, nil
}

func (e *pebbleEngine) read(key int64) ([]byte, bool, error) {
	v, closer, err := e.db.Get(encodeKey(e.prefix, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out := bytes.Clone(v)
	if err := closer.Close(); err != nil {
		return nil, false, err
	}

	return out, true, nil
}

func (e *pebbleEngine) view(ctx context.Context, _ []int64, fn func(txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fn(newOverlay(e.read))
}

func (e *pebbleEngine) update(ctx context.Context, _ []int64, fn func(txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ov := newOverlay(e.read)
	if err := fn(ov); err != nil {
		return err
	}
	if len(ov.order) == 0 {
		return nil
	}
	batch := e.db.NewBatch()
	defer batch.Close()
	err := ov.flush(
		func(key int64, value []byte) error {
			return batch.Set(encodeKey(e.prefix, key), value, nil)
		},
		func(key int64) error {
			return batch.Delete(encodeKey(e.prefix, key), nil)
		})
	if err != nil {
		return err
	}

	return batch.Commit(pebble.Sync)
}

func (e *pebbleEngine) count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	// Every key is the prefix plus 8 bytes, so nine 0xff bytes bound them.
	upper := append(bytes.Clone(e.prefix), bytes.Repeat([]byte{0xff}, 9)...)
	iter, err := e.db.NewIter(&pebble.IterOptions{LowerBound: e.prefix, UpperBound: upper})
	if err != nil {
		return 0, err
	}
	var n int64
	for valid := iter.First(); valid; valid = iter.Next() {
		n++
	}

	return n, iter.Close()
}

func (e *pebbleEngine) close() error {
	if !e.owner {
		return nil
	}

	return e.db.Close()
}
