package kvstore

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// txn is the view of the records an engine hands to a read or write
// closure. Writes are visible to later reads of the same txn.
type txn interface {
	get(key int64) ([]byte, bool, error)
	put(key int64, value []byte) error
	del(key int64) error
}

// engine is what a backend implements; store supplies the record semantics.
// update applies fn's writes atomically, or none of them when fn fails.
// keys lists every key fn may touch, for backends that lock or watch them.
type engine interface {
	view(ctx context.Context, keys []int64, fn func(txn) error) error
	update(ctx context.Context, keys []int64, fn func(txn) error) error
	count(ctx context.Context) (int64, error)
	close() error
}

// store implements Store on top of an engine.
type store struct {
	eng  engine
	kind Kind
	log  logrus.FieldLogger
}

var _ Store = (*store)(nil)

func newStore(eng engine, kind Kind, o Options) *store {
	s := &store{eng: eng, kind: kind, log: o.Logger.WithField("backend", string(kind))}
	s.log.WithField("namespace", o.Namespace).Debug("store opened")

	return s
}

func (s *store) wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, string(s.kind)+": "+format, args...)
}

func (s *store) Contains(ctx context.Context, key int64) (bool, error) {
	var found bool
	err := s.eng.view(ctx, []int64{key}, func(tx txn) error {
		_, ok, err := tx.get(key)
		found = ok

		return err
	})

	return found, s.wrapf(err, "Contains(%d)", key)
}

func (s *store) Insert(ctx context.Context, key int64, value []byte) error {
	err := s.eng.update(ctx, []int64{key}, func(tx txn) error {
		return apply(tx, Request{Kind: RequestInsert, Key: key, Value: value})
	})

	return s.wrapf(err, "Insert(%d)", key)
}

func (s *store) Update(ctx context.Context, key int64, value []byte) error {
	err := s.eng.update(ctx, []int64{key}, func(tx txn) error {
		return apply(tx, Request{Kind: RequestUpdate, Key: key, Value: value})
	})

	return s.wrapf(err, "Update(%d)", key)
}

func (s *store) Set(ctx context.Context, key int64, value []byte) error {
	err := s.eng.update(ctx, []int64{key}, func(tx txn) error {
		return tx.put(key, value)
	})

	return s.wrapf(err, "Set(%d)", key)
}

func (s *store) Get(ctx context.Context, key int64) ([]byte, error) {
	var out []byte
	err := s.eng.view(ctx, []int64{key}, func(tx txn) error {
		v, ok, err := tx.get(key)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		out = bytes.Clone(v)
		if out == nil {
			out = []byte{}
		}

		return nil
	})
	if err != nil {
		return nil, s.wrapf(err, "Get(%d)", key)
	}

	return out, nil
}

func (s *store) GetPartial(ctx context.Context, key int64, offset, length int64) ([]byte, error) {
	var out []byte
	err := s.eng.view(ctx, []int64{key}, func(tx txn) error {
		v, ok, err := tx.get(key)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if err := checkRange(offset, length, int64(len(v))); err != nil {
			return err
		}
		out = bytes.Clone(v[offset : offset+length])
		if out == nil {
			out = []byte{}
		}

		return nil
	})
	if err != nil {
		return nil, s.wrapf(err, "GetPartial(%d, %d, %d)", key, offset, length)
	}

	return out, nil
}

func (s *store) Remove(ctx context.Context, key int64) error {
	err := s.eng.update(ctx, []int64{key}, func(tx txn) error {
		return remove(tx, key)
	})

	return s.wrapf(err, "Remove(%d)", key)
}

func (s *store) IncrementInt(ctx context.Context, key int64, delta int64) (int64, error) {
	var n int64
	err := s.eng.update(ctx, []int64{key}, func(tx txn) error {
		v, ok, err := tx.get(key)
		if err != nil {
			return err
		}
		if ok {
			if n, err = DecodeInt64(v); err != nil {
				return err
			}
		}
		n += delta

		return tx.put(key, EncodeInt64(n))
	})
	if err != nil {
		return 0, s.wrapf(err, "IncrementInt(%d, %d)", key, delta)
	}

	return n, nil
}

func (s *store) BulkGet(ctx context.Context, keys []int64) ([]Result, error) {
	out := make([]Result, len(keys))
	err := s.eng.view(ctx, keys, func(tx txn) error {
		for i, key := range keys {
			v, ok, err := tx.get(key)
			if err != nil {
				return err
			}
			out[i] = Result{Key: key, Found: ok}
			if ok {
				out[i].Value = bytes.Clone(v)
				if out[i].Value == nil {
					out[i].Value = []byte{}
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, s.wrapf(err, "BulkGet(%d keys)", len(keys))
	}

	return out, nil
}

func (s *store) BulkGetRange(ctx context.Context, first int64, count int) ([]Result, error) {
	return s.BulkGet(ctx, keyRange(first, count))
}

func (s *store) BulkSet(ctx context.Context, requests []Request) error {
	keys := make([]int64, len(requests))
	for i, r := range requests {
		keys[i] = r.Key
	}
	err := s.eng.update(ctx, keys, func(tx txn) error {
		for _, r := range requests {
			if err := apply(tx, r); err != nil {
				return errors.Wrapf(err, "%s %d", r.Kind, r.Key)
			}
		}

		return nil
	})

	return s.wrapf(err, "BulkSet(%d requests)", len(requests))
}

func (s *store) BulkRemove(ctx context.Context, keys []int64) error {
	err := s.eng.update(ctx, keys, func(tx txn) error {
		for _, key := range keys {
			if err := remove(tx, key); err != nil {
				return errors.Wrapf(err, "remove %d", key)
			}
		}

		return nil
	})

	return s.wrapf(err, "BulkRemove(%d keys)", len(keys))
}

func (s *store) Count(ctx context.Context) (int64, error) {
	n, err := s.eng.count(ctx)

	return n, s.wrapf(err, "Count")
}

func (s *store) Close() error {
	s.log.Debug("store closed")

	return s.wrapf(s.eng.close(), "Close")
}

// apply performs one write request inside tx.
func apply(tx txn, r Request) error {
	if r.Kind != RequestSet {
		_, ok, err := tx.get(r.Key)
		if err != nil {
			return err
		}
		if r.Kind == RequestInsert && ok {
			return ErrExists
		}
		if r.Kind == RequestUpdate && !ok {
			return ErrNotFound
		}
	}

	return tx.put(r.Key, r.Value)
}

func remove(tx txn, key int64) error {
	_, ok, err := tx.get(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	return tx.del(key)
}

func checkRange(offset, length, size int64) error {
	if offset < 0 || length < 0 || offset >= size || length > size-offset {
		return errors.Wrapf(ErrOutOfBounds, "range [%d, %d) of %d bytes", offset, offset+length, size)
	}

	return nil
}

func keyRange(first int64, count int) []int64 {
	if count < 0 {
		count = 0
	}
	keys := make([]int64, count)
	for i := range keys {
		keys[i] = first + int64(i)
	}

	return keys
}

// EncodeInt64 returns the 8-byte little-endian record of v.
func EncodeInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))

	return b
}

// DecodeInt64 decodes a record written by EncodeInt64.
func DecodeInt64(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, errors.Wrapf(ErrCorruptRecord, "int64 record has %d bytes", len(b))
	}

	return int64(binary.LittleEndian.Uint64(b)), nil
}

// encodeKey maps key to 8 bytes whose lexicographic order is the numeric
// order of the keys.
func encodeKey(prefix []byte, key int64) []byte {
	b := make([]byte, len(prefix)+8)
	copy(b, prefix)
	binary.BigEndian.PutUint64(b[len(prefix):], uint64(key)^(1<<63))

	return b
}

// overlay buffers the writes of an update txn over a read function.
type overlay struct {
	read    func(key int64) ([]byte, bool, error)
	pending map[int64][]byte
	deleted map[int64]bool
	order   []int64
}

var _ txn = (*overlay)(nil)

func newOverlay(read func(key int64) ([]byte, bool, error)) *overlay {
	return &overlay{read: read, pending: make(map[int64][]byte), deleted: make(map[int64]bool)}
}

func (o *overlay) get(key int64) ([]byte, bool, error) {
	if o.deleted[key] {
		return nil, false, nil
	}
	if v, ok := o.pending[key]; ok {
		return v, true, nil
	}

	return o.read(key)
}

func (o *overlay) touch(key int64) {
	if _, ok := o.pending[key]; ok {
		return
	}
	if o.deleted[key] {
		return
	}
	o.order = append(o.order, key)
}

func (o *overlay) put(key int64, value []byte) error {
	o.touch(key)
	delete(o.deleted, key)
	v := bytes.Clone(value)
	if v == nil {
		v = []byte{}
	}
	o.pending[key] = v

	return nil
}

func (o *overlay) del(key int64) error {
	o.touch(key)
	delete(o.pending, key)
	o.deleted[key] = true

	return nil
}

// flush hands every buffered write to set or unset, in first-touch order.
func (o *overlay) flush(set func(key int64, value []byte) error, unset func(key int64) error) error {
	for _, key := range o.order {
		var err error
		if o.deleted[key] {
			err = unset(key)
		} else {
			err = set(key, o.pending[key])
		}
		if err != nil {
			return err
		}
	}

	return nil
}
