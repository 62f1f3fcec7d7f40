// Package kvstore is a key-value record store with int64 keys and opaque
// byte-slice values, behind one Store interface with several backends.
//
// What:
//
//   - Store: Contains, Insert (key must be absent), Update (key must be
//     present), Set (either), Get, GetPartial, Remove, IncrementInt, the
//     Bulk* family, Count and Close.
//   - Backends: an in-process map (NewMemory), a bbolt file (OpenBolt), a
//     pebble database on disk or on an in-memory FS (OpenPebble) and Redis
//     (NewRedis). Kyoto Tycoon and MySQL are recognised by Open but not
//     built; asking for them yields ErrUnsupportedBackend.
//   - SplitStore: stores records above a size threshold as a manifest plus
//     fixed-size chunks kept in a second Store, and verifies the xxhash
//     checksum when reassembling them.
//   - Instrumented: counts every operation by name and outcome on a
//     Prometheus registerer.
//   - Open/LoadConfig: choose and assemble all of the above from a Config,
//     read from YAML and SONLIB_* environment variables by viper.
//
// Records:
//
// IncrementInt, GetInt64 and the other *Int64 helpers treat a record as an
// 8-byte little-endian int64. IncrementInt on an absent key starts from 0
// and creates the record; on a record of any other size it fails with
// ErrCorruptRecord.
//
// Errors:
//
// Every failure is built with github.com/cockroachdb/errors and carries a
// stack. The conditions callers branch on are marked with the sentinels
// below and matched with errors.Is: ErrNotFound, ErrExists, ErrOutOfBounds,
// ErrCorruptRecord, ErrUnsupportedBackend.
//
// Concurrency:
//
// All backends are safe for concurrent use. Single-record writes are
// atomic on every backend; a BulkSet or BulkRemove is atomic on memory,
// bbolt, pebble and Redis, but not through a SplitStore.
package kvstore
