package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jottty/jottty/internal/datom"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_NoteLifecycle(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "note_lifecycle.yaml"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, "datom[0]: unsupported op: db/update", result.Trace[2].Error)
}

func TestRun_BadgerValues(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "badger_values.yaml"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 3)
	assert.Empty(t, result.Trace[1].Entities, "empty batch returns no entities")
	assert.Equal(t, datom.Object{}, result.Trace[2].Entities[0].Attrs)
}

func TestRun_ExpectMismatch(t *testing.T) {
	s := mustParse(t, `
name: mismatch
description: "expected attrs differ"
steps:
  - datoms:
      - ["db/add", "e", "a", 1]
    expect:
      - id: "e"
        attrs: { "a": 2 }
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 0: entity e: expected attrs")
}

func TestRun_ExpectCountMismatch(t *testing.T) {
	s := mustParse(t, `
name: count
description: "two entities, one expected"
steps:
  - datoms:
      - ["db/add", "e1", "a", 1]
      - ["db/add", "e2", "a", 1]
    expect:
      - id: "e1"
        attrs: { "a": 1 }
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected 1 entities, got 2")
}

func TestRun_ExpectOrder(t *testing.T) {
	s := mustParse(t, `
name: order
description: "results follow first appearance"
steps:
  - datoms:
      - ["db/add", "b", "x", 1]
      - ["db/add", "a", "x", 1]
      - ["db/add", "b", "y", 2]
    expect:
      - id: "b"
        attrs: { "x": 1, "y": 2 }
      - id: "a"
        attrs: { "x": 1 }
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnexpectedError(t *testing.T) {
	s := mustParse(t, `
name: unexpected
description: "malformed tuple without expect_error"
steps:
  - datoms:
      - ["db/add", "e", "a"]
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Contains(t, result.Errors[0], "datom list must have 4 items")
}

func TestRun_MissingExpectedError(t *testing.T) {
	s := mustParse(t, `
name: missing_error
description: "valid batch flagged as failing"
steps:
  - datoms:
      - ["db/add", "e", "a", 1]
    expect_error: "unsupported op"
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "got success")
}

func TestRun_WrongErrorMessage(t *testing.T) {
	s := mustParse(t, `
name: wrong_error
description: "error text differs"
steps:
  - datoms:
      - [1, "e", "a", 1]
    expect_error: "unsupported op"
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "does not contain")
}

func TestRun_FailedAssertions(t *testing.T) {
	s := mustParse(t, `
name: failed_assertions
description: "every assertion type fails"
steps:
  - datoms:
      - ["db/add", "e", "a", 1]
assertions:
  - type: final_state
    entity: "e"
    expect: { "a": 2 }
  - type: final_state
    entity: "e"
    expect: { "b": 1 }
  - type: absent
    entity: "e"
  - type: row_count
    count: 5
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Assertion failed: final_state")
	assert.Contains(t, result.Errors[0], "Actual: 1")
	assert.Contains(t, result.Errors[1], "Actual: missing")
	assert.Contains(t, result.Errors[2], "Assertion failed: absent")
	assert.Contains(t, result.Errors[3], "Expected: 5 rows")
	assert.Contains(t, result.Errors[3], "Actual: 1 rows")
	assert.Contains(t, result.Errors[3], "[0] 1 datoms: 1 entities")
}

func TestRun_UnknownCodec(t *testing.T) {
	s := mustParse(t, `
name: codec
description: "unknown codec"
codec: gzip
steps:
  - datoms: []
`)
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown codec")
}

func TestEvaluateAssertions_NoContext(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertRowCount}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires database context")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
