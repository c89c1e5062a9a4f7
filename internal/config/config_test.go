package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
events: {
	"spring-gala": {}
	"arena-night": {capacity: 200, timeout: "15m"}
}
`), "admit.cue")
	require.NoError(t, err)

	gala, ok := cfg.Event("spring-gala")
	require.True(t, ok)
	assert.Equal(t, DefaultCapacity, gala.Capacity)
	assert.Equal(t, DefaultTimeout, gala.Timeout)
	assert.Equal(t, "spring-gala", gala.ID)

	arena, ok := cfg.Event("arena-night")
	require.True(t, ok)
	assert.Equal(t, 200, arena.Capacity)
	assert.Equal(t, 15*time.Minute, arena.Timeout)

	assert.Equal(t, DefaultReaperInterval, cfg.ReaperInterval)
	assert.Equal(t, DefaultAddr, cfg.ServerAddr)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, []string{"arena-night", "spring-gala"}, cfg.EventIDs())
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
events: gala: capacity: 3
reaper: interval: "30s"
server: addr: "127.0.0.1:9090"
database: "/var/lib/admit/queue.db"
`), "admit.cue")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.ReaperInterval)
	assert.Equal(t, "127.0.0.1:9090", cfg.ServerAddr)
	assert.Equal(t, "/var/lib/admit/queue.db", cfg.Database)
	assert.Equal(t, 3, cfg.Events["gala"].Capacity)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"zero capacity", `events: gala: capacity: 0`, "invalid config"},
		{"unknown field", `events: gala: capacty: 5`, "invalid config"},
		{"top-level typo", `event: gala: capacity: 5`, "invalid config"},
		{"bad event id", `events: "-gala": capacity: 5`, "invalid config"},
		{"bad duration", `events: gala: timeout: "soon"`, "invalid duration"},
		{"negative duration", `reaper: interval: "-1m"`, "invalid duration"},
		{"syntax error", `events: {`, "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "admit.cue")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admit.cue")
	require.NoError(t, os.WriteFile(path, []byte(`events: gala: capacity: 2`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Events["gala"].Capacity)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	_, ok := cfg.Event("anything")
	assert.False(t, ok)
	assert.Empty(t, cfg.EventIDs())
}
