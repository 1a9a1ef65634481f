package engine

import (
	"errors"
	"fmt"
)

// Stage identifies where in Apply a failure happened.
type Stage string

const (
	StageValidate Stage = "validate"
	StageLoad     Stage = "load"
	StageReplay   Stage = "replay"
	StageWrite    Stage = "write"
)

// ApplyError reports the entity whose load, replay, or write aborted a batch.
// Nothing from the batch was committed.
type ApplyError struct {
	TxID     string
	EntityID string
	Stage    Stage
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply tx %s: %s %q: %v", e.TxID, e.Stage, e.EntityID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// FailedEntity returns the entity id that aborted the batch, if err came
// from Apply.
func FailedEntity(err error) (string, bool) {
	var ae *ApplyError
	if errors.As(err, &ae) {
		return ae.EntityID, true
	}
	return "", false
}
