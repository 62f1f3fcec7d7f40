package kvstore

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Sentinel errors. Match with errors.Is; the returned errors wrap them with
// the operation and key.
var (
	// ErrNotFound is returned when a record is absent.
	ErrNotFound = errors.New("kvstore: record not found")

	// ErrExists is returned by Insert for a key that already has a record.
	ErrExists = errors.New("kvstore: record already exists")

	// ErrOutOfBounds is returned by GetPartial for a range outside the record.
	ErrOutOfBounds = errors.New("kvstore: partial range out of bounds")

	// ErrCorruptRecord is returned for records that cannot be decoded: an
	// int64 record of the wrong size, or a split record whose chunks do not
	// match their manifest.
	ErrCorruptRecord = errors.New("kvstore: corrupt record")

	// ErrUnsupportedBackend is returned by Open for a Kind that has no
	// implementation.
	ErrUnsupportedBackend = errors.New("kvstore: unsupported backend")

	// ErrClosed is returned by an in-memory store after Close.
	ErrClosed = errors.New("kvstore: store closed")
)

// Store is a record store keyed by int64.
//
// Values handed to Insert, Update and Set are not retained; values returned
// are owned by the caller.
type Store interface {
	Contains(ctx context.Context, key int64) (bool, error)
	Insert(ctx context.Context, key int64, value []byte) error
	Update(ctx context.Context, key int64, value []byte) error
	Set(ctx context.Context, key int64, value []byte) error
	Get(ctx context.Context, key int64) ([]byte, error)

	// GetPartial returns length bytes of the record starting at offset.
	// The range must satisfy 0 <= offset < len(record) and
	// offset+length <= len(record).
	GetPartial(ctx context.Context, key int64, offset, length int64) ([]byte, error)

	Remove(ctx context.Context, key int64) error

	// IncrementInt adds delta to an int64 record and returns the new value.
	IncrementInt(ctx context.Context, key int64, delta int64) (int64, error)

	// BulkGet returns one Result per key, in order; absent keys yield a
	// Result with Found false rather than an error.
	BulkGet(ctx context.Context, keys []int64) ([]Result, error)

	// BulkGetRange is BulkGet over the keys first, first+1, ..., first+count-1.
	BulkGetRange(ctx context.Context, first int64, count int) ([]Result, error)

	// BulkSet applies the requests in order. A failing request aborts the
	// whole batch.
	BulkSet(ctx context.Context, requests []Request) error

	// BulkRemove removes every key; any absent key aborts the whole batch.
	BulkRemove(ctx context.Context, keys []int64) error

	Count(ctx context.Context) (int64, error)

	io.Closer
}

// RequestKind selects the write semantics of a bulk Request.
type RequestKind int

const (
	// RequestSet writes the record whether or not it exists.
	RequestSet RequestKind = iota
	// RequestInsert requires the key to be absent.
	RequestInsert
	// RequestUpdate requires the key to be present.
	RequestUpdate
)

// String returns "set", "insert" or "update".
func (k RequestKind) String() string {
	switch k {
	case RequestSet:
		return "set"
	case RequestInsert:
		return "insert"
	case RequestUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Request is one write of a BulkSet.
type Request struct {
	Kind  RequestKind
	Key   int64
	Value []byte
}

// Result is one answer of a BulkGet.
type Result struct {
	Key   int64
	Value []byte
	Found bool
}

// Options configures the stores built by this package.
type Options struct {
	// Logger receives debug entries for opens and split-record traffic.
	// A nil Logger discards them.
	Logger logrus.FieldLogger

	// Namespace separates independent stores that share one backend: it
	// names the bbolt bucket, prefixes pebble keys and prefixes Redis keys.
	Namespace string

	// Registerer, when set, makes Open count operations on it.
	Registerer prometheus.Registerer
}

// Option represents a functional option for the constructors and Open.
type Option func(*Options)

// WithLogger sets the logger; entries carry the field module=kvstore.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithNamespace sets Options.Namespace.
func WithNamespace(ns string) Option {
	return func(o *Options) {
		o.Namespace = ns
	}
}

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "records"

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.Logger == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		o.Logger = discard
	}
	o.Logger = o.Logger.WithField("module", "kvstore")

	return o
}
