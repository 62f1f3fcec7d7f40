package kvstore

import (
	"context"
)

// InsertInt64 inserts v as an 8-byte record.
func InsertInt64(ctx context.Context, s Store, key, v int64) error {
	return s.Insert(ctx, key, EncodeInt64(v))
}

// UpdateInt64 replaces an existing record with v.
func UpdateInt64(ctx context.Context, s Store, key, v int64) error {
	return s.Update(ctx, key, EncodeInt64(v))
}

// SetInt64 writes v whether or not key exists.
func SetInt64(ctx context.Context, s Store, key, v int64) error {
	return s.Set(ctx, key, EncodeInt64(v))
}

// GetInt64 reads an 8-byte record.
func GetInt64(ctx context.Context, s Store, key int64) (int64, error) {
	b, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	return DecodeInt64(b)
}
