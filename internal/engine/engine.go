package engine

import (
	"context"
	"log/slog"

	"github.com/jottty/jottty/internal/datom"
)

// Engine applies datom batches against a backend.
//
// Thread-safety: Engine holds no mutable state of its own; concurrent Apply
// calls are serialized (or rejected) by the backend's locking.
type Engine struct {
	backend datom.Transactor
	txGen   TxIDGenerator
	log     *slog.Logger
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithTxIDGenerator overrides the transaction id generator.
// Default: UUIDv7Generator.
func WithTxIDGenerator(g TxIDGenerator) Option {
	return func(e *Engine) { e.txGen = g }
}

// WithLogger sets the logger for batch diagnostics. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine over backend.
func New(backend datom.Transactor, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		txGen:   UUIDv7Generator{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply groups datoms by entity, replays each group against the entity's
// stored snapshot, and writes the results back in a single transaction.
//
// Returns one entity per distinct id, in order of first appearance.
// An empty batch returns an empty slice without touching the backend, as
// does a batch with an id or attribute that is not valid UTF-8.
// On error nothing from the batch is committed.
func (e *Engine) Apply(ctx context.Context, datoms []datom.Datom) ([]datom.Entity, error) {
	if len(datoms) == 0 {
		return []datom.Entity{}, nil
	}

	txID := e.txGen.Generate()
	for _, d := range datoms {
		if err := d.Validate(); err != nil {
			return nil, &ApplyError{TxID: txID, EntityID: d.E, Stage: StageValidate, Err: err}
		}
	}
	groups := groupByEntity(datoms)

	var results []datom.Entity
	err := e.backend.Transact(ctx, func(sess datom.Session) error {
		results = make([]datom.Entity, 0, len(groups))
		for _, g := range groups {
			entity, err := applyGroup(ctx, sess, txID, g)
			if err != nil {
				return err
			}
			results = append(results, entity)
		}
		return nil
	})
	if err != nil {
		e.log.Debug("batch aborted", "tx", txID, "entities", len(groups), "datoms", len(datoms), "error", err)
		return nil, err
	}

	e.log.Debug("batch applied", "tx", txID, "entities", len(groups), "datoms", len(datoms))
	return results, nil
}

// applyGroup loads, replays, and writes one entity.
func applyGroup(ctx context.Context, sess datom.Session, txID string, g group) (datom.Entity, error) {
	entity, err := sess.Load(ctx, g.id)
	if err != nil {
		return datom.Entity{}, &ApplyError{TxID: txID, EntityID: g.id, Stage: StageLoad, Err: err}
	}

	for _, d := range g.datoms {
		if err := entity.Apply(d); err != nil {
			return datom.Entity{}, &ApplyError{TxID: txID, EntityID: g.id, Stage: StageReplay, Err: err}
		}
	}

	if err := sess.Write(ctx, entity); err != nil {
		return datom.Entity{}, &ApplyError{TxID: txID, EntityID: g.id, Stage: StageWrite, Err: err}
	}

	return entity, nil
}
