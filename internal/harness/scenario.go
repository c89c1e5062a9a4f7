package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/admit/internal/queue"
)

// Scenario defines an admission queue scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Events configures the events the scenario uses.
	Events map[string]EventSpec `yaml:"events"`

	// Steps run in order against the engine.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// EventSpec is an event's admission settings.
type EventSpec struct {
	Capacity int    `yaml:"capacity"`
	Timeout  string `yaml:"timeout,omitempty"` // default 30m
}

// Step is one operation. Exactly one of Enter, Complete, Cancel, Advance
// and Reap is set.
type Step struct {
	Enter    *EnterStep `yaml:"enter,omitempty"`
	Complete string     `yaml:"complete,omitempty"` // session name
	Cancel   string     `yaml:"cancel,omitempty"`   // session name
	Advance  string     `yaml:"advance,omitempty"`  // duration, e.g. "90s"
	Reap     bool       `yaml:"reap,omitempty"`

	// Expect validates the step's outcome. If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// EnterStep enters an event's queue.
type EnterStep struct {
	Event string `yaml:"event"`
	Token string `yaml:"token"`

	// As names the session for later steps. Defaults to the token.
	As string `yaml:"as,omitempty"`
}

// Expect specifies a step's expected outcome. Unset fields are not checked.
type Expect struct {
	// Error is the expected queue error code, e.g. EVENT_NOT_FOUND.
	Error string `yaml:"error,omitempty"`

	// Status is the session status after enter, complete or cancel.
	Status string `yaml:"status,omitempty"`

	// Position is the waiting position after enter (0 = none).
	Position *int `yaml:"position,omitempty"`

	// Reentered is whether enter returned an existing session.
	Reentered *bool `yaml:"reentered,omitempty"`

	// Promoted names the session promoted by complete or cancel.
	// "none" expects no promotion.
	Promoted string `yaml:"promoted,omitempty"`

	// Expired is the number of sessions a reap expired.
	Expired *int `yaml:"expired,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of status, position, counts, order.
	Type string `yaml:"type"`

	// Session names the session (status, position).
	Session string `yaml:"session,omitempty"`

	// Event is the event ID (counts, order).
	Event string `yaml:"event,omitempty"`

	// Status is the expected status (status).
	Status string `yaml:"status,omitempty"`

	// Position is the expected position (position).
	Position int `yaml:"position,omitempty"`

	// Counts are expected counts by status (counts).
	Counts map[string]int `yaml:"counts,omitempty"`

	// Sessions are the expected waiting sessions, head first (order).
	Sessions []string `yaml:"sessions,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus   = "status"
	AssertPosition = "position"
	AssertCounts   = "counts"
	AssertOrder    = "order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events map is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for id, ev := range s.Events {
		if ev.Capacity <= 0 {
			return fmt.Errorf("events[%s]: capacity must be positive", id)
		}
		if ev.Timeout != "" {
			if d, err := time.ParseDuration(ev.Timeout); err != nil || d <= 0 {
				return fmt.Errorf("events[%s]: timeout must be a positive duration", id)
			}
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	ops := 0
	if st.Enter != nil {
		ops++
		if st.Enter.Event == "" {
			return fmt.Errorf("steps[%d]: enter.event is required", index)
		}
	}
	if st.Complete != "" {
		ops++
	}
	if st.Cancel != "" {
		ops++
	}
	if st.Advance != "" {
		ops++
		if d, err := time.ParseDuration(st.Advance); err != nil || d < 0 {
			return fmt.Errorf("steps[%d]: advance must be a non-negative duration", index)
		}
	}
	if st.Reap {
		ops++
	}
	if ops != 1 {
		return fmt.Errorf("steps[%d]: exactly one of enter, complete, cancel, advance, reap is required", index)
	}

	if st.Expect != nil && st.Expect.Status != "" {
		if _, err := queue.ParseStatus(st.Expect.Status); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStatus:
		if a.Session == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: session and status are required for status", index)
		}
		if _, err := queue.ParseStatus(a.Status); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertPosition:
		if a.Session == "" {
			return fmt.Errorf("assertions[%d]: session is required for position", index)
		}
	case AssertCounts:
		if a.Event == "" || len(a.Counts) == 0 {
			return fmt.Errorf("assertions[%d]: event and counts are required for counts", index)
		}
		for status := range a.Counts {
			if _, err := queue.ParseStatus(status); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertOrder:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
