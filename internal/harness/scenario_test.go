package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "note_lifecycle.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "note_lifecycle", s.Name)
	require.Len(t, s.Steps, 4)
	assert.Len(t, s.Steps[0].Datoms, 2)
	assert.Equal(t, []any{"db/add", "block:x", "block/title", "T"}, s.Steps[0].Datoms[0])
	assert.Equal(t, "unsupported op: db/update", s.Steps[2].ExpectError)
	require.Len(t, s.Assertions, 5)
	assert.Equal(t, AssertRowCount, s.Assertions[4].Type)
	assert.Equal(t, 3, s.Assertions[4].Count)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "misspelled key"
steps:
  - datoms: []
assertion:
  - type: row_count
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name:   "missing name",
			yaml:   "description: d\nsteps:\n  - datoms: []\n",
			errMsg: "name is required",
		},
		{
			name:   "missing description",
			yaml:   "name: n\nsteps:\n  - datoms: []\n",
			errMsg: "description is required",
		},
		{
			name:   "no steps",
			yaml:   "name: n\ndescription: d\n",
			errMsg: "steps list is required",
		},
		{
			name:   "bad backend",
			yaml:   "name: n\ndescription: d\nbackend: postgres\nsteps:\n  - datoms: []\n",
			errMsg: "unknown backend",
		},
		{
			name:   "expect and expect_error",
			yaml:   "name: n\ndescription: d\nsteps:\n  - datoms: []\n    expect:\n      - id: e\n    expect_error: x\n",
			errMsg: "mutually exclusive",
		},
		{
			name:   "final_state without entity",
			yaml:   "name: n\ndescription: d\nsteps:\n  - datoms: []\nassertions:\n  - type: final_state\n    expect: {a: 1}\n",
			errMsg: "final_state requires entity",
		},
		{
			name:   "final_state without expect",
			yaml:   "name: n\ndescription: d\nsteps:\n  - datoms: []\nassertions:\n  - type: final_state\n    entity: e\n",
			errMsg: "final_state requires expect",
		},
		{
			name:   "absent without entity",
			yaml:   "name: n\ndescription: d\nsteps:\n  - datoms: []\nassertions:\n  - type: absent\n",
			errMsg: "absent requires entity",
		},
		{
			name:   "unknown assertion",
			yaml:   "name: n\ndescription: d\nsteps:\n  - datoms: []\nassertions:\n  - type: trace_order\n",
			errMsg: "unknown assertion type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestScenarioFilesParse(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			_, err := os.Stat(f)
			require.NoError(t, err)
			_, err = LoadScenario(f)
			assert.NoError(t, err)
		})
	}
}
