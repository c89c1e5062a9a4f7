// Package store provides SQLite-backed durable storage for queue sessions.
//
// The store is a pure data layer: it records every session ever admitted and
// exposes one serializable unit (Atomic) in which the engine makes its
// admission and promotion decisions.
//
// # Critical Patterns
//
// Derived Active Count
//   - The number of active sessions is always COUNT(*) over stored statuses
//   - Read inside the same transaction as the write that depends on it
//
// Deterministic Queue Order
//   - All multi-row reads: ORDER BY created_at ASC, id ASC COLLATE BINARY
//   - Positions are counted with the same (created_at, id) key
//
// One Open Session Per Token
//   - Partial UNIQUE(event_id, token) WHERE status IN ('waiting', 'active')
//   - Enforced by SQLite even if two processes share the database file
//
// Compare-And-Set Transitions
//   - UPDATE ... WHERE id = ? AND status = ?
//   - Zero affected rows means another unit moved the session first (RACE_LOST)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - _txlock=immediate: Transactions take the write lock at BEGIN
//
// Timestamps are stored as INTEGER Unix nanoseconds in UTC.
package store
