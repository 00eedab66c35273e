package farewell

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"golang.org/x/sync/semaphore"
)

// DefaultExport is the export the guest is expected to provide.
const DefaultExport = "goodbye"

// Command configures the instantiation of a guest collaborator.
type Command struct {
	Name           string // module name; defaults to the export name
	Export         string // exported function to call; defaults to DefaultExport
	Env            []string
	Stdout, Stderr io.Writer
}

// Instantiate binds the compiled guest to the runtime without running
// its start functions.  The guest's stdio is routed to the command's
// writers, so whatever the collaborator emits lands after the host's
// own output.
func (cmd Command) Instantiate(ctx context.Context, r wazero.Runtime, cm wazero.CompiledModule) (*Proc, error) {
	export := cmd.Export
	if export == "" {
		export = DefaultExport
	}

	name := cmd.Name
	if name == "" {
		name = export
	}

	mod, err := r.InstantiateModule(ctx, cm, cmd.withEnv(wazero.NewModuleConfig().
		WithName(name).
		WithStdout(cmd.Stdout).
		WithStderr(cmd.Stderr).
		WithRandSource(rand.Reader).
		WithOsyield(runtime.Gosched).
		WithSysNanosleep().
		WithSysNanotime().
		WithSysWalltime().
		WithStartFunctions()))
	if err != nil {
		return nil, err
	}

	return &Proc{
		mod:    mod,
		export: export,
		sem:    semaphore.NewWeighted(1),
	}, nil
}

func (cmd Command) withEnv(mc wazero.ModuleConfig) wazero.ModuleConfig {
	for _, s := range cmd.Env {
		ss := strings.SplitN(s, "=", 2)
		if len(ss) != 2 {
			slog.Warn("ignored unparsable environment variable",
				"var", s)
			continue
		}

		mc = mc.WithEnv(ss[0], ss[1])
	}

	return mc
}

// Proc is an instantiated guest collaborator.  Calls are serialized;
// the guest is stateless as far as the host is concerned, but wasm
// modules are not reentrant.
type Proc struct {
	mod    api.Module
	export string
	sem    *semaphore.Weighted
}

func (p *Proc) String() string {
	return p.mod.Name()
}

// Call invokes the guest's farewell export with an empty stack.  A
// guest that does not provide the export is a wiring error.
func (p *Proc) Call(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	fn := p.mod.ExportedFunction(p.export)
	if fn == nil {
		return errors.New("missing export: " + p.export)
	}

	err := fn.CallWithStack(ctx, nil)
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	} else if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}

	return err
}

func (p *Proc) Close(ctx context.Context) error {
	return p.mod.Close(ctx)
}
