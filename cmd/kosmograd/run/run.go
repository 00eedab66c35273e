// Package run wires the configured environment together and serves
// the program's linear sequence.
package run

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/urfave/cli/v2"

	"github.com/fitzgen/kosmograd"
	"github.com/fitzgen/kosmograd/config"
	"github.com/fitzgen/kosmograd/farewell"
	"github.com/fitzgen/kosmograd/greet"
)

// Flags are shared with the application root, so that a bare
// `kosmograd` invocation behaves like `kosmograd run`.
var Flags = []cli.Flag{
	&cli.PathFlag{
		Name:    "config",
		Aliases: []string{"c"},
		EnvVars: []string{"KOSMOGRAD_CONFIG"},
		Usage:   "path to config `file`",
	},
	&cli.IntFlag{
		Name:  "count",
		Usage: "greeting count",
	},
	&cli.StringFlag{
		Name:  "name",
		Usage: "greeting target's name",
	},
	&cli.PathFlag{
		Name:  "guest",
		Usage: "`path` to the farewell wasm module",
	},
	&cli.StringFlag{
		Name:  "export",
		Usage: "guest `function` to invoke",
	},
	&cli.StringSliceFlag{
		Name:  "env",
		Usage: "guest environment `key=value` pairs",
	},
	&cli.BoolFlag{
		Name:  "debug",
		Usage: "enable verbose logging and wasm debug info",
	},
}

func Command() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "run the greeting program",
		Flags:  Flags,
		Action: Main,
	}
}

func Main(c *cli.Context) error {
	cfg, err := load(c)
	if err != nil {
		return err
	}

	env := kosmograd.Env{
		Target: greet.Target{N: cfg.Greeting.Count, Name: cfg.Greeting.Name},
		Stdout: c.App.Writer,
	}

	if cfg.Guest.Path == "" {
		// No collaborator wired; Serve reports it after the
		// host's own output.
		return env.Serve(c.Context)
	}

	b, err := os.ReadFile(cfg.Guest.Path)
	if err != nil {
		return errors.Wrap(err, "read guest")
	}

	r := wazero.NewRuntimeWithConfig(c.Context, wazero.NewRuntimeConfig().
		WithDebugInfoEnabled(cfg.Debug).
		WithCloseOnContextDone(true))
	defer r.Close(c.Context)

	wasi, err := wasi_snapshot_preview1.Instantiate(c.Context, r)
	if err != nil {
		return err
	}
	defer wasi.Close(c.Context)

	cm, err := r.CompileModule(c.Context, b)
	if err != nil {
		return errors.Wrap(err, "compile guest")
	}
	defer cm.Close(c.Context)

	p, err := farewell.Command{
		Export: cfg.Guest.Export,
		Env:    cfg.Guest.Env,
		Stdout: c.App.Writer,
		Stderr: c.App.ErrWriter,
	}.Instantiate(c.Context, r, cm)
	if err != nil {
		return errors.Wrap(err, "instantiate guest")
	}
	defer p.Close(c.Context)

	slog.DebugContext(c.Context, "guest loaded",
		"path", cfg.Guest.Path,
		"export", cfg.Guest.Export)

	env.Farewell = p
	return env.Serve(c.Context)
}

// load layers flags over the file/env configuration.
func load(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.Path("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("count") {
		cfg.Greeting.Count = c.Int("count")
	}
	if c.IsSet("name") {
		cfg.Greeting.Name = c.String("name")
	}
	if c.IsSet("guest") {
		cfg.Guest.Path = c.Path("guest")
	}
	if c.IsSet("export") {
		cfg.Guest.Export = c.String("export")
	}
	if c.IsSet("env") {
		cfg.Guest.Env = c.StringSlice("env")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}

	return cfg, nil
}
