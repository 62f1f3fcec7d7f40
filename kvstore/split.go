package kvstore

import (
	"context"
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Record tags. Every value a SplitStore writes to its records store starts
// with one of them.
const (
	tagInline byte = 0
	tagSplit  byte = 1
)

// chunkCounterKey holds the last chunk id handed out in the chunks store.
const chunkCounterKey int64 = 0

// manifestLen is tag(1) + chunks(4) + chunkSize(4) + size(8) + checksum(8) + first(8).
const manifestLen = 33

// SplitConfig sizes the records of a SplitStore.
type SplitConfig struct {
	// Threshold is the largest value stored inline, in bytes.
	Threshold int `mapstructure:"threshold"`
	// Chunk is the size of every chunk but the last, in bytes.
	Chunk int `mapstructure:"chunk"`
}

// validate checks that the sizes fit the manifest's 32-bit chunk size.
func (c SplitConfig) validate() error {
	if c.Threshold < 0 || c.Chunk <= 0 || int64(c.Chunk) > math.MaxUint32 {
		return errors.Newf("kvstore: split sizes threshold=%d chunk=%d: want threshold >= 0 and 0 < chunk <= %d",
			c.Threshold, c.Chunk, uint64(math.MaxUint32))
	}

	return nil
}

// manifest describes a value stored as chunks first, first+1, ... of the
// chunks store.
type manifest struct {
	chunks    uint32
	chunkSize uint32
	size      uint64
	checksum  uint64
	first     int64
}

func (m manifest) encode() []byte {
	b := make([]byte, manifestLen)
	b[0] = tagSplit
	binary.LittleEndian.PutUint32(b[1:], m.chunks)
	binary.LittleEndian.PutUint32(b[5:], m.chunkSize)
	binary.LittleEndian.PutUint64(b[9:], m.size)
	binary.LittleEndian.PutUint64(b[17:], m.checksum)
	binary.LittleEndian.PutUint64(b[25:], uint64(m.first))

	return b
}

func decodeManifest(b []byte) (manifest, error) {
	if len(b) != manifestLen || b[0] != tagSplit {
		return manifest{}, errors.Wrapf(ErrCorruptRecord, "manifest of %d bytes", len(b))
	}
	m := manifest{
		chunks:    binary.LittleEndian.Uint32(b[1:]),
		chunkSize: binary.LittleEndian.Uint32(b[5:]),
		size:      binary.LittleEndian.Uint64(b[9:]),
		checksum:  binary.LittleEndian.Uint64(b[17:]),
		first:     int64(binary.LittleEndian.Uint64(b[25:])),
	}
	if m.chunkSize == 0 || uint64(m.chunks) != (m.size+uint64(m.chunkSize)-1)/uint64(m.chunkSize) {
		return manifest{}, errors.Wrapf(ErrCorruptRecord, "manifest: %d chunks of %d for %d bytes", m.chunks, m.chunkSize, m.size)
	}

	return m, nil
}

func (m manifest) keys() []int64 { return keyRange(m.first, int(m.chunks)) }

// SplitStore stores values larger than a threshold as a manifest record in
// one Store and fixed-size chunks in another. Values at or below the
// threshold live inline in the records store.
//
// Writes through a SplitStore are serialized by the SplitStore itself.
// Bulk writes are applied one request at a time and are not atomic.
type SplitStore struct {
	records Store
	chunks  Store
	cfg     SplitConfig
	log     logrus.FieldLogger
	mu      sync.Mutex
}

var _ Store = (*SplitStore)(nil)

// NewSplitStore layers split records over records and chunks, which must be
// distinct stores. Closing the SplitStore closes both.
func NewSplitStore(records, chunks Store, cfg SplitConfig, opts ...Option) (*SplitStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "NewSplitStore")
	}
	o := buildOptions(opts)

	return &SplitStore{
		records: records,
		chunks:  chunks,
		cfg:     cfg,
		log:     o.Logger.WithField("layer", "split"),
	}, nil
}

// write stores value's chunks when it is too large to inline and returns
// the record to keep under the key.
func (s *SplitStore) write(ctx context.Context, key int64, value []byte) ([]byte, error) {
	if len(value) <= s.cfg.Threshold {
		rec := make([]byte, 1+len(value))
		rec[0] = tagInline
		copy(rec[1:], value)

		return rec, nil
	}
	n := (len(value) + s.cfg.Chunk - 1) / s.cfg.Chunk
	last, err := s.chunks.IncrementInt(ctx, chunkCounterKey, int64(n))
	if err != nil {
		return nil, err
	}
	m := manifest{
		chunks:    uint32(n),
		chunkSize: uint32(s.cfg.Chunk),
		size:      uint64(len(value)),
		checksum:  xxhash.Sum64(value),
		first:     last - int64(n) + 1,
	}
	reqs := make([]Request, n)
	for i := range reqs {
		end := min((i+1)*s.cfg.Chunk, len(value))
		reqs[i] = Request{Kind: RequestSet, Key: m.first + int64(i), Value: value[i*s.cfg.Chunk : end]}
	}
	if err := s.chunks.BulkSet(ctx, reqs); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"key": key, "chunks": n, "size": len(value)}).Debug("split record written")

	return m.encode(), nil
}

// drop removes the chunks of rec, if it is a manifest.
func (s *SplitStore) drop(ctx context.Context, rec []byte) error {
	if len(rec) == 0 || rec[0] != tagSplit {
		return nil
	}
	m, err := decodeManifest(rec)
	if err != nil {
		return err
	}

	return s.chunks.BulkRemove(ctx, m.keys())
}

// resolve returns the value behind a record.
func (s *SplitStore) resolve(ctx context.Context, key int64, rec []byte) ([]byte, error) {
	if len(rec) == 0 {
		return nil, errors.Wrap(ErrCorruptRecord, "empty record")
	}
	if rec[0] == tagInline {
		return append([]byte{}, rec[1:]...), nil
	}
	m, err := decodeManifest(rec)
	if err != nil {
		return nil, err
	}
	parts, err := s.chunks.BulkGet(ctx, m.keys())
	if err != nil {
		return nil, err
	}
	value := make([]byte, 0, m.size)
	for _, p := range parts {
		if !p.Found {
			return nil, errors.Wrapf(ErrCorruptRecord, "chunk %d missing", p.Key)
		}
		value = append(value, p.Value...)
	}
	if uint64(len(value)) != m.size || xxhash.Sum64(value) != m.checksum {
		return nil, errors.Wrapf(ErrCorruptRecord, "split record of %d bytes fails its checksum", len(value))
	}
	s.log.WithFields(logrus.Fields{"key": key, "chunks": m.chunks}).Debug("split record read")

	return value, nil
}

func (s *SplitStore) Contains(ctx context.Context, key int64) (bool, error) {
	return s.records.Contains(ctx, key)
}

func (s *SplitStore) Get(ctx context.Context, key int64) ([]byte, error) {
	rec, err := s.records.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	v, err := s.resolve(ctx, key, rec)

	return v, errors.Wrapf(err, "split: Get(%d)", key)
}

func (s *SplitStore) GetPartial(ctx context.Context, key int64, offset, length int64) ([]byte, error) {
	rec, err := s.records.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	out, err := s.partial(ctx, rec, offset, length)

	return out, errors.Wrapf(err, "split: GetPartial(%d, %d, %d)", key, offset, length)
}

func (s *SplitStore) partial(ctx context.Context, rec []byte, offset, length int64) ([]byte, error) {
	if len(rec) == 0 {
		return nil, errors.Wrap(ErrCorruptRecord, "empty record")
	}
	if rec[0] == tagInline {
		if err := checkRange(offset, length, int64(len(rec)-1)); err != nil {
			return nil, err
		}

		return append([]byte{}, rec[1+offset:1+offset+length]...), nil
	}
	m, err := decodeManifest(rec)
	if err != nil {
		return nil, err
	}
	if err := checkRange(offset, length, int64(m.size)); err != nil {
		return nil, err
	}
	if length == 0 {
		return []byte{}, nil
	}
	cs := int64(m.chunkSize)
	lo, hi := offset/cs, (offset+length-1)/cs
	parts, err := s.chunks.BulkGetRange(ctx, m.first+lo, int(hi-lo+1))
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, (hi-lo+1)*cs)
	for _, p := range parts {
		if !p.Found {
			return nil, errors.Wrapf(ErrCorruptRecord, "chunk %d missing", p.Key)
		}
		buf = append(buf, p.Value...)
	}
	start := offset - lo*cs
	if int64(len(buf)) < start+length {
		return nil, errors.Wrapf(ErrCorruptRecord, "chunks hold %d bytes, need %d", len(buf), start+length)
	}

	return buf[start : start+length], nil
}

func (s *SplitStore) Insert(ctx context.Context, key int64, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Wrapf(s.put(ctx, Request{Kind: RequestInsert, Key: key, Value: value}), "split: Insert(%d)", key)
}

func (s *SplitStore) Update(ctx context.Context, key int64, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Wrapf(s.put(ctx, Request{Kind: RequestUpdate, Key: key, Value: value}), "split: Update(%d)", key)
}

func (s *SplitStore) Set(ctx context.Context, key int64, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Wrapf(s.put(ctx, Request{Kind: RequestSet, Key: key, Value: value}), "split: Set(%d)", key)
}

// put performs one write request; s.mu must be held.
func (s *SplitStore) put(ctx context.Context, r Request) error {
	old, err := s.records.Get(ctx, r.Key)
	switch {
	case errors.Is(err, ErrNotFound):
		if r.Kind == RequestUpdate {
			return err
		}
		old = nil
	case err != nil:
		return err
	case r.Kind == RequestInsert:
		return ErrExists
	}
	rec, err := s.write(ctx, r.Key, r.Value)
	if err != nil {
		return err
	}
	if err := s.records.Set(ctx, r.Key, rec); err != nil {
		_ = s.drop(ctx, rec)
		return err
	}

	return s.drop(ctx, old)
}

func (s *SplitStore) Remove(ctx context.Context, key int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.records.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := s.records.Remove(ctx, key); err != nil {
		return err
	}

	return errors.Wrapf(s.drop(ctx, rec), "split: Remove(%d)", key)
}

func (s *SplitStore) IncrementInt(ctx context.Context, key int64, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	rec, err := s.records.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return 0, err
	default:
		v, err := s.resolve(ctx, key, rec)
		if err != nil {
			return 0, errors.Wrapf(err, "split: IncrementInt(%d)", key)
		}
		if n, err = DecodeInt64(v); err != nil {
			return 0, errors.Wrapf(err, "split: IncrementInt(%d)", key)
		}
	}
	n += delta
	if err := s.put(ctx, Request{Kind: RequestSet, Key: key, Value: EncodeInt64(n)}); err != nil {
		return 0, errors.Wrapf(err, "split: IncrementInt(%d)", key)
	}

	return n, nil
}

func (s *SplitStore) BulkGet(ctx context.Context, keys []int64) ([]Result, error) {
	recs, err := s.records.BulkGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	return s.resolveAll(ctx, recs)
}

func (s *SplitStore) BulkGetRange(ctx context.Context, first int64, count int) ([]Result, error) {
	recs, err := s.records.BulkGetRange(ctx, first, count)
	if err != nil {
		return nil, err
	}

	return s.resolveAll(ctx, recs)
}

func (s *SplitStore) resolveAll(ctx context.Context, recs []Result) ([]Result, error) {
	for i, r := range recs {
		if !r.Found {
			continue
		}
		v, err := s.resolve(ctx, r.Key, r.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "split: record %d", r.Key)
		}
		recs[i].Value = v
	}

	return recs, nil
}

func (s *SplitStore) BulkSet(ctx context.Context, requests []Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range requests {
		if err := s.put(ctx, r); err != nil {
			return errors.Wrapf(err, "split: BulkSet %s %d", r.Kind, r.Key)
		}
	}

	return nil
}

func (s *SplitStore) BulkRemove(ctx context.Context, keys []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.records.BulkGet(ctx, keys)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if !r.Found {
			return errors.Wrapf(ErrNotFound, "split: BulkRemove %d", r.Key)
		}
	}
	if err := s.records.BulkRemove(ctx, keys); err != nil {
		return err
	}
	for _, r := range recs {
		if err := s.drop(ctx, r.Value); err != nil {
			return errors.Wrapf(err, "split: BulkRemove %d", r.Key)
		}
	}

	return nil
}

func (s *SplitStore) Count(ctx context.Context) (int64, error) {
	return s.records.Count(ctx)
}

func (s *SplitStore) Close() error {
	return errors.CombineErrors(s.records.Close(), s.chunks.Close())
}
