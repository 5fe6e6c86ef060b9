package pipeline

import (
	"context"
	"fmt"
)

// Stage is one step in a pipeline. A stage receives the full ordered asset
// slice and returns the (possibly replaced) slice for the next stage.
type Stage interface {
	Name() string
	Run(ctx context.Context, assets []*Asset) ([]*Asset, error)
}

// StageFunc adapts a function into a named Stage.
func StageFunc(name string, fn func(ctx context.Context, assets []*Asset) ([]*Asset, error)) Stage {
	return &funcStage{name: name, fn: fn}
}

type funcStage struct {
	name string
	fn   func(ctx context.Context, assets []*Asset) ([]*Asset, error)
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Run(ctx context.Context, assets []*Asset) ([]*Asset, error) {
	return s.fn(ctx, assets)
}

// StageError wraps a failure with the name of the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// EachAsset builds a stage that transforms assets one at a time, keeping
// order and count.
func EachAsset(name string, fn func(ctx context.Context, a *Asset) error) Stage {
	return StageFunc(name, func(ctx context.Context, assets []*Asset) ([]*Asset, error) {
		for _, a := range assets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := fn(ctx, a); err != nil {
				return nil, fmt.Errorf("%s: %w", a.Path, err)
			}
		}
		return assets, nil
	})
}
