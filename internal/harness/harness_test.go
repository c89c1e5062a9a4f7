package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_expectations
description: "every expectation here is wrong"
events:
  gala: { capacity: 1 }
steps:
  - enter: { event: gala, token: a }
    expect: { status: waiting }
  - enter: { event: gala, token: b }
    expect: { position: 3 }
  - complete: a
    expect: { promoted: none }
  - enter: { event: nope, token: a }
  - reap: true
    expect: { expired: 5 }
assertions:
  - type: counts
    event: gala
    counts: { active: 2 }
  - type: order
    event: gala
    sessions: [a]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "steps[0]: expected status waiting, got active")
	assert.Contains(t, result.Errors[1], "steps[1]: expected position 3, got 1")
	assert.Contains(t, result.Errors[2], "steps[2]: expected promoted none, got b")
	assert.Contains(t, result.Errors[3], "steps[3]: unexpected error")
	assert.Contains(t, result.Errors[4], "steps[4]: expected 5 expired, got 0")
	assert.Contains(t, result.Errors[5], "assertions[0] (counts)")
	assert.Contains(t, result.Errors[6], "assertions[1] (order)")
}

func TestRun_ExpectedErrorThatDoesNotHappen(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: missing_error
description: "expects an error from a valid entry"
events:
  gala: { capacity: 1 }
steps:
  - enter: { event: gala, token: a }
    expect: { error: EVENT_NOT_FOUND }
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error EVENT_NOT_FOUND, got success")
}

func TestRun_Isolation(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/fifo_promotion.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Snapshot, second.Snapshot)
}

func TestRun_SnapshotNamesSessions(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/reentry_and_cancel.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	require.Len(t, result.Snapshot.Sessions, 3)
	assert.Equal(t, SessionRecord{Session: "alice", ID: "s-0001", Event: "gala", Status: "active"}, result.Snapshot.Sessions[0])
	assert.Equal(t, SessionRecord{Session: "bob", ID: "s-0002", Event: "gala", Status: "expired"}, result.Snapshot.Sessions[1])
	assert.Equal(t, SessionRecord{Session: "carol", ID: "s-0003", Event: "gala", Status: "waiting", Position: 1}, result.Snapshot.Sessions[2])

	last := result.Snapshot.Transitions[len(result.Snapshot.Transitions)-1]
	assert.Equal(t, TransitionRecord{Session: "bob", From: "waiting", To: "expired", At: "0s"}, last)
}
