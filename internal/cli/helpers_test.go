package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv isolates HOME, config and database for one test.
type testEnv struct {
	t      *testing.T
	config string
	db     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("JOTTTY_CONFIG", "")
	t.Setenv("JOTTTY_DB_PATH", "")
	return &testEnv{
		t:      t,
		config: filepath.Join(dir, "config.toml"),
		db:     filepath.Join(dir, "db.sqlite"),
	}
}

// run executes the root command with the env's config and database.
func (e *testEnv) run(stdin io.Reader, args ...string) (string, error) {
	e.t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--config", e.config, "--db", e.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// decodeOK parses a JSON success response into data.
func decodeOK(t *testing.T, out string, data any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, data))
}
