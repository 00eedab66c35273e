// Package build compiles the program twice, as the original tooling
// did:  the goodbye guest through the wasm toolchain, and the host
// natively with debug info intact.
package build

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/fitzgen/kosmograd/cmd/kosmograd/inspect"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "build the goodbye guest and a native host binary with debug info",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "dist",
				Usage:   "output `dir`",
			},
			&cli.BoolFlag{
				Name:  "inspect",
				Usage: "dump debug info for the produced binaries",
			},
		},
		Action: Main,
	}
}

func Main(c *cli.Context) error {
	outdir := c.Path("output")
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return err
	}

	// Step 1: the guest, via the wasm toolchain.
	guest := filepath.Join(outdir, "goodbye.wasm")
	output, err := command(c, "tinygo", "build",
		"-o", guest,
		"-target=wasi",
		"-scheduler=none",
		"./examples/goodbye")
	if err != nil {
		return fmt.Errorf("build guest: %w", err)
	}
	if err := report(c, output); err != nil {
		return err
	}

	// Step 2: the host, natively.  Optimizations off so the DWARF
	// keeps every binding.
	host := filepath.Join(outdir, "kosmograd")
	output, err = command(c, "go", "build",
		"-gcflags=all=-N -l",
		"-o", host,
		"./cmd/kosmograd")
	if err != nil {
		return fmt.Errorf("build host: %w", err)
	}
	if err := report(c, output); err != nil {
		return err
	}

	slog.InfoContext(c.Context, "build complete",
		"guest", guest,
		"host", host)

	if !c.Bool("inspect") {
		return nil
	}

	for _, path := range []string{host, guest} {
		if err := inspect.Dump(c, path); err != nil {
			return err
		}
	}

	return nil
}

// report relays a toolchain's stdout to the app's writer.  Both build
// steps are normally silent on success.
func report(c *cli.Context, output string) error {
	if output == "" {
		return nil
	}

	n, err := fmt.Fprintln(c.App.Writer, output)
	if err != nil {
		return fmt.Errorf("fprint: write failed at byte %d: %w", n, err)
	}

	return nil
}

func command(c *cli.Context, name string, args ...string) (output string, err error) {
	cmd := exec.CommandContext(c.Context, name, args...)
	cmd.Stderr = c.App.ErrWriter

	b, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("exec: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
