// Package fetch is the one way pages load data: a tri-state Result for
// single loads and All for "every source must succeed" aggregates.
package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Result is what a view renders from: a value, an error, or neither yet.
type Result[T any] struct {
	State State
	Value T
	Err   error
}

func (r Result[T]) Ready() bool  { return r.State == Ready }
func (r Result[T]) Failed() bool { return r.State == Failed }

// Load runs fn and captures its outcome.
func Load[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	if err != nil {
		return Result[T]{State: Failed, Err: err}
	}
	return Result[T]{State: Ready, Value: v}
}

// Loader fetches one source and stores it somewhere the caller owns.
type Loader func(ctx context.Context) error

// All runs every loader concurrently and waits for all of them. The first
// error is returned; there is no partial success. Loaders are not cancelled
// when a sibling fails, late results are simply ignored by the caller.
func All(ctx context.Context, loaders ...Loader) error {
	var g errgroup.Group
	for _, load := range loaders {
		g.Go(func() error { return load(ctx) })
	}
	return g.Wait()
}

// Into adapts a typed fetch into a Loader writing to dst.
func Into[T any](dst *T, fn func(context.Context) (T, error)) Loader {
	return func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
