// Package queue defines the checkout admission queue domain: sessions, their
// status lifecycle, the FIFO ordering key, the error taxonomy, and the
// persistence contract the engine runs against.
//
// This package contains types and small pure helpers only. All other internal
// packages import queue; queue imports nothing internal.
//
// Key design constraints:
//   - Status only moves forward (waiting -> active -> completed|expired)
//   - Waiting sessions are ordered by (CreatedAt, ID), never by insertion order alone
//   - Active counts are always derived from stored statuses, never cached
//   - All JSON tags use snake_case
package queue
