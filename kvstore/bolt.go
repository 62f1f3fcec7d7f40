package kvstore

import (
	"bytes"
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
)

// boltEngine keeps one namespace as a bucket of a bbolt file. Keys are
// stored with encodeKey so the bucket is ordered by key.
type boltEngine struct {
	db     *bbolt.DB
	bucket []byte
	owner  bool
}

// OpenBolt opens or creates the bbolt file at path and returns a Store on
// the bucket named by the namespace option.
func OpenBolt(path string, opts ...Option) (Store, error) {
	o := buildOptions(opts)
	db, err := openBoltDB(path)
	if err != nil {
		return nil, err
	}
	eng, err := newBoltEngine(db, o.Namespace, true)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newStore(eng, KindBolt, o), nil
}

func openBoltDB(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout:      time.Second,
		NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
		FreelistType: bbolt.DefaultOptions.FreelistType,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "bolt: open %s", path)
	}

	return db, nil
}

func newBoltEngine(db *bbolt.DB, namespace string, owner bool) (*boltEngine, error) {
	e := &boltEngine{db: db, bucket: []byte(namespace), owner: owner}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(e.bucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "bolt: create bucket %q", namespace)
	}

	return e, nil
}

type boltTxn struct {
	b *bbolt.Bucket
}

func (t boltTxn) get(key int64) ([]byte, bool, error) {
	k := encodeKey(nil, key)
	found, v := t.b.Cursor().Seek(k)
	if !bytes.Equal(found, k) {
		return nil, false, nil
	}

	return v, true, nil
}

func (t boltTxn) put(key int64, value []byte) error {
	if value == nil {
		value = []byte{}
	}

	return t.b.Put(encodeKey(nil, key), value)
}

func (t boltTxn) del(key int64) error {
	return t.b.Delete(encodeKey(nil, key))
}

func (e *boltEngine) view(ctx context.Context, _ []int64, fn func(txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.db.View(func(tx *bbolt.Tx) error {
		return fn(boltTxn{b: tx.Bucket(e.bucket)})
	})
}

func (e *boltEngine) update(ctx context.Context, _ []int64, fn func(txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.db.Update(func(tx *bbolt.Tx) error {
		return fn(boltTxn{b: tx.Bucket(e.bucket)})
	})
}

func (e *boltEngine) count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	err := e.db.View(func(tx *bbolt.Tx) error {
		n = int64(tx.Bucket(e.bucket).Stats().KeyN)
		return nil
	})

	return n, err
}

func (e *boltEngine) close() error {
	if !e.owner {
		return nil
	}

	return e.db.Close()
}
