// Package kosmograd is a small deterministic host program: it prints a
// pluralized greeting, demonstrates lexical shadowing, prints a fixed
// sum, and then invokes an external farewell collaborator exactly once.
package kosmograd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fitzgen/kosmograd/farewell"
	"github.com/fitzgen/kosmograd/greet"
)

// Fixed addends printed by the arithmetic step.
const (
	AddendA = 5
	AddendB = 10
)

// DefaultTarget is the greeting target the driver uses when no
// configuration overrides it.
var DefaultTarget = greet.Target{N: 10, Name: "Jeena"}

// Env wires the program together.  Stdout receives all host output;
// Farewell is the external collaborator invoked last.
type Env struct {
	Target   greet.Target
	Stdout   io.Writer
	Farewell farewell.Farewell
}

// Serve runs the program's linear sequence:  greeting, shadow
// demonstration, arithmetic, then exactly one farewell call.  There is
// no other control flow.  A nil Farewell fails with
// farewell.ErrNotBound after the host's own output is emitted.
func (env Env) Serve(ctx context.Context) error {
	console := greet.Console{Writer: env.stdout()}

	if err := console.Hello(env.Target); err != nil {
		return err
	}

	if err := console.Shadow(); err != nil {
		return err
	}

	if err := console.Sum(AddendA, AddendB); err != nil {
		return err
	}

	if env.Farewell == nil {
		return farewell.ErrNotBound
	}

	slog.DebugContext(ctx, "invoking farewell collaborator")
	return env.Farewell.Call(ctx)
}

func (env Env) stdout() io.Writer {
	if env.Stdout == nil {
		return os.Stdout
	}

	return env.Stdout
}
