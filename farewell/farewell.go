// Package farewell models the program's external collaborator: a
// routine defined outside the core, invoked exactly once after all
// other output.  The collaborator is an injected dependency so that
// its absence is a reportable wiring error rather than a crash.
package farewell

import (
	"context"
	"errors"
)

// ErrNotBound is returned when the driver runs without a collaborator
// wired in.
var ErrNotBound = errors.New("farewell: no collaborator bound")

// Farewell is the external collaborator.  Implementations take no
// arguments and produce no result; any output they emit is their own.
type Farewell interface {
	Call(ctx context.Context) error
}

// Func adapts a plain function into a Farewell.
type Func func(ctx context.Context) error

func (f Func) Call(ctx context.Context) error {
	if f == nil {
		return ErrNotBound
	}

	return f(ctx)
}
