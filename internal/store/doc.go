// Package store provides SQLite-backed durable storage for compiled units.
//
// Every unit a session compiles, successful or not, can be written as one
// row in units. The membrane log of a successful unit is also stored row by
// row in crossings, keyed by (unit_id, idx), so an audit can read the
// effect sequence without decoding JSON.
//
// # Ordering
//
// Units are ordered by seq ASC, id ASC COLLATE BINARY and crossings by idx.
// Wall-clock time is never stored; seq is the session's logical clock.
//
// # Idempotency
//
// WriteUnit uses ON CONFLICT(id) DO NOTHING. A unit id is content derived
// (session, seq, program hash), so writing the same result twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
