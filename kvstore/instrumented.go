package kvstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of the operation counter.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeExists      = "exists"
	OutcomeOutOfBounds = "out_of_bounds"
	OutcomeCorrupt     = "corrupt"
	OutcomeError       = "error"
)

// Instrumented counts the operations of a Store in the counter vector
// sonlib_kv_ops_total, labelled by op and outcome.
type Instrumented struct {
	next Store
	ops  *prometheus.CounterVec
}

var _ Store = (*Instrumented)(nil)

// NewInstrumented wraps next and registers its counter on reg. Two
// Instrumented stores on one registerer share the already registered
// counter.
func NewInstrumented(next Store, reg prometheus.Registerer) (*Instrumented, error) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sonlib",
		Subsystem: "kv",
		Name:      "ops_total",
		Help:      "Key-value store operations by operation and outcome.",
	}, []string{"op", "outcome"})
	if err := reg.Register(ops); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, errors.Wrap(err, "kvstore: register metrics")
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, errors.Wrap(err, "kvstore: register metrics")
		}
		ops = existing
	}

	return &Instrumented{next: next, ops: ops}, nil
}

// Ops returns the counter vector, for tests and custom exposition.
func (s *Instrumented) Ops() *prometheus.CounterVec { return s.ops }

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrExists):
		return OutcomeExists
	case errors.Is(err, ErrOutOfBounds):
		return OutcomeOutOfBounds
	case errors.Is(err, ErrCorruptRecord):
		return OutcomeCorrupt
	default:
		return OutcomeError
	}
}

func (s *Instrumented) observe(op string, err error) {
	s.ops.WithLabelValues(op, outcome(err)).Inc()
}

func (s *Instrumented) Contains(ctx context.Context, key int64) (bool, error) {
	ok, err := s.next.Contains(ctx, key)
	s.observe("contains", err)

	return ok, err
}

func (s *Instrumented) Insert(ctx context.Context, key int64, value []byte) error {
	err := s.next.Insert(ctx, key, value)
	s.observe("insert", err)

	return err
}

func (s *Instrumented) Update(ctx context.Context, key int64, value []byte) error {
	err := s.next.Update(ctx, key, value)
	s.observe("update", err)

	return err
}

func (s *Instrumented) Set(ctx context.Context, key int64, value []byte) error {
	err := s.next.Set(ctx, key, value)
	s.observe("set", err)

	return err
}

func (s *Instrumented) Get(ctx context.Context, key int64) ([]byte, error) {
	v, err := s.next.Get(ctx, key)
	s.observe("get", err)

	return v, err
}

func (s *Instrumented) GetPartial(ctx context.Context, key int64, offset, length int64) ([]byte, error) {
	v, err := s.next.GetPartial(ctx, key, offset, length)
	s.observe("get_partial", err)

	return v, err
}

func (s *Instrumented) Remove(ctx context.Context, key int64) error {
	err := s.next.Remove(ctx, key)
	s.observe("remove", err)

	return err
}

func (s *Instrumented) IncrementInt(ctx context.Context, key int64, delta int64) (int64, error) {
	n, err := s.next.IncrementInt(ctx, key, delta)
	s.observe("increment", err)

	return n, err
}

func (s *Instrumented) BulkGet(ctx context.Context, keys []int64) ([]Result, error) {
	r, err := s.next.BulkGet(ctx, keys)
	s.observe("bulk_get", err)

	return r, err
}

func (s *Instrumented) BulkGetRange(ctx context.Context, first int64, count int) ([]Result, error) {
	r, err := s.next.BulkGetRange(ctx, first, count)
	s.observe("bulk_get_range", err)

	return r, err
}

func (s *Instrumented) BulkSet(ctx context.Context, requests []Request) error {
	err := s.next.BulkSet(ctx, requests)
	s.observe("bulk_set", err)

	return err
}

func (s *Instrumented) BulkRemove(ctx context.Context, keys []int64) error {
	err := s.next.BulkRemove(ctx, keys)
	s.observe("bulk_remove", err)

	return err
}

func (s *Instrumented) Count(ctx context.Context) (int64, error) {
	n, err := s.next.Count(ctx)
	s.observe("count", err)

	return n, err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
