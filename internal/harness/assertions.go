package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jottty/jottty/internal/datom"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Full trace for context
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.Error != "" {
			fmt.Fprintf(&buf, "  [%d] %d datoms: error: %s\n", event.Step, event.Datoms, event.Error)
			continue
		}
		fmt.Fprintf(&buf, "  [%d] %d datoms: %d entities\n", event.Step, event.Datoms, len(event.Entities))
	}

	return buf.String()
}

// counter is implemented by backends that can count their entity rows.
type counter interface {
	Count(ctx context.Context) (int, error)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Backend datom.Backend
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if actx == nil || actx.Backend == nil {
			err = fmt.Errorf("assertion[%d]: %s requires database context", i, assertion.Type)
		} else {
			switch assertion.Type {
			case AssertFinalState:
				err = assertFinalState(actx, result.Trace, assertion)
			case AssertAbsent:
				err = assertAbsent(actx, result.Trace, assertion)
			case AssertRowCount:
				err = assertRowCount(actx, result.Trace, assertion)
			default:
				err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
			}
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertFinalState checks that the stored entity contains every expected
// attribute (subset match). Extra attributes are ignored.
func assertFinalState(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	e, err := actx.Backend.Load(actx.Ctx, assertion.Entity)
	if err != nil {
		return fmt.Errorf("final_state: load %s: %w", assertion.Entity, err)
	}
	want, err := toObject(assertion.Expect)
	if err != nil {
		return fmt.Errorf("final_state: %w", err)
	}

	for _, a := range want.SortedKeys() {
		got, ok := e.Get(a)
		if !ok || !reflect.DeepEqual(got, want[a]) {
			actual := "missing"
			if ok {
				actual = datom.Text(got)
			}
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s %s = %s", assertion.Entity, a, datom.Text(want[a])),
				Actual:   actual,
				Trace:    trace,
			}
		}
	}
	return nil
}

func assertAbsent(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	e, err := actx.Backend.Load(actx.Ctx, assertion.Entity)
	if err != nil {
		return fmt.Errorf("absent: load %s: %w", assertion.Entity, err)
	}
	if !e.IsEmpty() {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("%s has no attributes", assertion.Entity),
			Actual:   datom.Text(e.Attrs),
			Trace:    trace,
		}
	}
	return nil
}

func assertRowCount(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	c, ok := actx.Backend.(counter)
	if !ok {
		return fmt.Errorf("row_count: backend %T cannot count rows", actx.Backend)
	}
	n, err := c.Count(actx.Ctx)
	if err != nil {
		return fmt.Errorf("row_count: %w", err)
	}
	if n != assertion.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows", assertion.Count),
			Actual:   fmt.Sprintf("%d rows", n),
			Trace:    trace,
		}
	}
	return nil
}
