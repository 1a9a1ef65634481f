package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/jottty/jottty/internal/codec"
	"github.com/jottty/jottty/internal/datom"
	"github.com/jottty/jottty/internal/engine"
	"github.com/jottty/jottty/internal/kvstore"
	"github.com/jottty/jottty/internal/store"
	"github.com/jottty/jottty/internal/transact"
)

// Harness is the test execution engine.
// It runs scenarios against a fresh backend with fixed transaction ids.
type Harness struct {
	backend datom.Backend
	gateway *transact.Gateway
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory backend for isolation.
//
// Execution flow:
// 1. Open a fresh in-memory backend
// 2. Apply each step through the transaction gateway
// 3. Compare returned entities and errors with the step's expectations
// 4. Evaluate assertions against the stored state
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	c, err := codec.ForName(scenario.Codec)
	if err != nil {
		return nil, err
	}
	if closer, ok := c.(io.Closer); ok {
		defer closer.Close()
	}

	backend, err := openBackend(scenario.Backend, c, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer backend.Close()

	txIDs := make([]string, len(scenario.Steps))
	for i := range txIDs {
		txIDs[i] = fmt.Sprintf("tx-%04d", i+1)
	}
	eng := engine.New(backend,
		engine.WithTxIDGenerator(engine.NewFixedGenerator(txIDs...)),
		engine.WithLogger(logger),
	)

	h := &Harness{
		backend: backend,
		gateway: transact.NewGateway(eng, transact.WithLogger(logger)),
		logger:  logger,
	}

	ctx := context.Background()
	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)

	actx := &AssertionContext{
		Backend: backend,
		Ctx:     ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func openBackend(name string, c codec.Codec, logger *slog.Logger) (datom.Backend, error) {
	switch name {
	case "", "sqlite":
		return store.Open(store.MemoryPath, store.WithCodec(c), store.WithLogger(logger))
	case "badger":
		return kvstore.Open("", kvstore.WithCodec(c), kvstore.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// executeSteps applies every step and checks its expectations.
// A failing step does not stop the scenario.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		entities, err := h.gateway.Transact(ctx, step.Datoms)
		if err != nil {
			result.AddErrorTrace(i, len(step.Datoms), err)
			switch {
			case step.ExpectError == "":
				result.AddError(fmt.Sprintf("step %d: unexpected error: %v", i, err))
			case !strings.Contains(err.Error(), step.ExpectError):
				result.AddError(fmt.Sprintf("step %d: error %q does not contain %q", i, err.Error(), step.ExpectError))
			}
			h.logger.Info("step rejected", "step", i, "error", err)
			continue
		}

		result.AddStepTrace(i, len(step.Datoms), entities)
		if step.ExpectError != "" {
			result.AddError(fmt.Sprintf("step %d: expected error containing %q, got success", i, step.ExpectError))
			continue
		}
		if step.Expect != nil {
			if msg := compareEntities(step.Expect, entities); msg != "" {
				result.AddError(fmt.Sprintf("step %d: %s", i, msg))
			}
		}
		h.logger.Info("step applied", "step", i, "entities", len(entities))
	}
}

// compareEntities checks returned entities against expectations exactly:
// same count, same order, same attributes.
func compareEntities(expected []ExpectEntity, actual []datom.Entity) string {
	if len(expected) != len(actual) {
		return fmt.Sprintf("expected %d entities, got %d", len(expected), len(actual))
	}
	for i, exp := range expected {
		want, err := toObject(exp.Attrs)
		if err != nil {
			return fmt.Sprintf("entity %d: %v", i, err)
		}
		got := actual[i]
		if got.ID != exp.ID {
			return fmt.Sprintf("entity %d: expected id %q, got %q", i, exp.ID, got.ID)
		}
		if !reflect.DeepEqual(want, got.Attrs) {
			return fmt.Sprintf("entity %s: expected attrs %s, got %s", exp.ID, datom.Text(want), datom.Text(got.Attrs))
		}
	}
	return ""
}

// toObject converts YAML-decoded attributes into a datom Object.
func toObject(attrs map[string]any) (datom.Object, error) {
	obj := datom.Object{}
	for k, v := range attrs {
		dv, err := datom.ValueOf(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		obj[k] = dv
	}
	return obj, nil
}
