// Package engine implements the checkout admission queue.
//
// The engine gates a high-demand checkout flow per event: at most Capacity
// sessions are active at once, everyone else waits in strict FIFO order, and
// freed slots are handed to the longest-waiting session.
//
// ARCHITECTURE:
//
// Components:
//   - Admission Controller (Enter): active-or-waiting decision at entry
//   - Promotion Engine (Exit, Complete, Cancel): terminal transition + backfill
//   - Position Calculator (Position, Poll): lock-free rank reads
//   - Reaper (Reap, Reaper.Run): expiry of sessions older than the event timeout
//
// Atomic Units:
// Every change to an event's active membership runs inside one store
// transaction (queue.Store.Atomic) while holding that event's in-process lock.
// The transaction is what makes check-then-insert safe across restarts and
// processes; the per-event lock keeps same-process callers from spinning on
// RACE_LOST. Calls for different events never share an engine lock.
//
// Active counts are never cached. They are read inside the unit that acts
// on them.
//
// CRITICAL PATTERNS:
//
// FIFO Order:
// Waiting sessions are ordered by (CreatedAt, ID). Promotion always picks the
// head of that order and Position counts with the same key, so position 1 is
// always the next session to be promoted.
//
// Retry Policy:
// A unit that fails with RACE_LOST is retried once; a second loss surfaces as
// STORE_UNAVAILABLE. All operations are idempotent, so callers may retry
// STORE_UNAVAILABLE with backoff.
package engine
