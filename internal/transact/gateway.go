package transact

import (
	"context"
	"log/slog"

	"github.com/jottty/jottty/internal/datom"
)

// Applier applies parsed datoms. Implemented by *engine.Engine.
type Applier interface {
	Apply(ctx context.Context, datoms []datom.Datom) ([]datom.Entity, error)
}

// Gateway is the entry point for raw transactions: parse, then apply.
type Gateway struct {
	applier Applier
	log     *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for per-datom debug lines. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// NewGateway creates a Gateway in front of applier.
func NewGateway(applier Applier, opts ...Option) *Gateway {
	g := &Gateway{applier: applier, log: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Transact parses raws and applies them as one batch. A parse error is
// returned before the applier is called.
func (g *Gateway) Transact(ctx context.Context, raws []any) ([]datom.Entity, error) {
	datoms, err := ParseBatch(raws)
	if err != nil {
		return nil, err
	}
	for _, d := range datoms {
		g.log.Debug("datom", "tuple", describe(d))
	}
	return g.applier.Apply(ctx, datoms)
}

// TransactJSON decodes a JSON batch and transacts it.
func (g *Gateway) TransactJSON(ctx context.Context, data []byte) ([]datom.Entity, error) {
	raws, err := DecodeTuples(data)
	if err != nil {
		return nil, err
	}
	return g.Transact(ctx, raws)
}
