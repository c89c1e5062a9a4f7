// Package config loads per-event admission settings from a CUE file.
//
// The file is unified with an embedded schema (#Config), so typos in field
// names, non-positive capacities, and malformed event IDs are rejected at
// load time and defaults are filled in by CUE itself:
//
//	events: {
//		"spring-gala": capacity: 50
//		"arena-night": {capacity: 200, timeout: "15m"}
//	}
//	reaper: interval: "1m"
//
// The engine treats the loaded Config as read-only.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSrc string

// Defaults applied when a field is omitted.
const (
	DefaultCapacity       = 50
	DefaultTimeout        = 30 * time.Minute
	DefaultReaperInterval = 2 * time.Minute
	DefaultAddr           = ":8080"
	DefaultDatabase       = "admit.db"
)

// Event is the admission configuration of one event.
type Event struct {
	ID       string
	Capacity int
	Timeout  time.Duration
}

// Config is the complete, validated service configuration.
type Config struct {
	Events         map[string]Event
	ReaperInterval time.Duration
	ServerAddr     string
	Database       string
}

// rawConfig mirrors #Config for CUE decoding.
type rawConfig struct {
	Events map[string]struct {
		Capacity int    `json:"capacity"`
		Timeout  string `json:"timeout"`
	} `json:"events"`
	Reaper struct {
		Interval string `json:"interval"`
	} `json:"reaper"`
	Server struct {
		Addr string `json:"addr"`
	} `json:"server"`
	Database string `json:"database"`
}

// Default returns a configuration with no events and default settings.
func Default() *Config {
	return &Config{
		Events:         map[string]Event{},
		ReaperInterval: DefaultReaperInterval,
		ServerAddr:     DefaultAddr,
		Database:       DefaultDatabase,
	}
}

// LoadFile reads and validates a CUE configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates CUE source against the embedded schema and decodes it.
// filename is used in error positions only.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &Error{Message: "parse config", Details: cueerrors.Details(err, nil)}
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &Error{Message: "invalid config", Details: cueerrors.Details(err, nil)}
	}

	var raw rawConfig
	if err := unified.Decode(&raw); err != nil {
		return nil, &Error{Message: "decode config", Details: cueerrors.Details(err, nil)}
	}

	return fromRaw(raw)
}

// fromRaw converts decoded CUE values into a Config, parsing durations.
func fromRaw(raw rawConfig) (*Config, error) {
	cfg := Default()
	cfg.ServerAddr = raw.Server.Addr
	cfg.Database = raw.Database

	interval, err := parsePositiveDuration("reaper.interval", raw.Reaper.Interval)
	if err != nil {
		return nil, err
	}
	cfg.ReaperInterval = interval

	for id, ev := range raw.Events {
		timeout, err := parsePositiveDuration(fmt.Sprintf("events.%s.timeout", id), ev.Timeout)
		if err != nil {
			return nil, err
		}
		cfg.Events[id] = Event{ID: id, Capacity: ev.Capacity, Timeout: timeout}
	}

	return cfg, nil
}

func parsePositiveDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &Error{Message: "invalid duration", Details: fmt.Sprintf("%s: %v", field, err)}
	}
	if d <= 0 {
		return 0, &Error{Message: "invalid duration", Details: fmt.Sprintf("%s: must be positive, got %s", field, s)}
	}
	return d, nil
}

// Event returns the configuration of an event.
func (c *Config) Event(id string) (Event, bool) {
	ev, ok := c.Events[id]
	return ev, ok
}

// EventIDs returns configured event IDs in sorted order.
func (c *Config) EventIDs() []string {
	ids := make([]string, 0, len(c.Events))
	for id := range c.Events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Error is a configuration load error with CUE position details.
type Error struct {
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}
