// Package harness runs admission queue scenarios against a real engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: fifo_promotion
//	description: "A freed slot goes to the longest-waiting session"
//	events:
//	  gala: { capacity: 1, timeout: 30m }
//	steps:
//	  - enter: { event: gala, token: a, as: holder }
//	    expect: { status: active }
//	  - enter: { event: gala, token: b, as: w1 }
//	    expect: { status: waiting, position: 1 }
//	  - advance: 5m
//	  - complete: holder
//	    expect: { status: completed, promoted: w1 }
//	  - reap: true
//	    expect: { expired: 0 }
//	assertions:
//	  - type: status
//	    session: w1
//	    status: active
//	  - type: counts
//	    event: gala
//	    counts: { active: 1, completed: 1 }
//
// Sessions are named with "as" and referred to by that name afterwards.
//
// # Assertion Types
//
//   - status: a session's final status
//   - position: a session's final position (0 when not waiting)
//   - counts: an event's session counts per status (unlisted statuses are 0)
//   - order: the waiting sessions of an event, head first
//
// # Deterministic Testing
//
// Every scenario runs on a fresh in-memory SQLite store with a manual clock
// starting at a fixed instant and sequential session IDs (s-0001, s-0002,
// ...), so the transition trace and final state are identical across runs
// and can be compared against golden files.
package harness
