// Package inspect dumps the lexical scope and binding structure
// recorded in a binary's debug info.
package inspect

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/fitzgen/kosmograd/debug"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "dump scope and binding info from a binary's DWARF data",
		ArgsUsage: "<binary>...",
		Action:    Main,
	}
}

func Main(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return cli.Exit("missing binary argument", 1)
	}

	for _, path := range c.Args().Slice() {
		if err := Dump(c, path); err != nil {
			return err
		}
	}

	return nil
}

// Dump writes the {types, scopes} JSON for one binary to the app's
// writer.
func Dump(c *cli.Context, path string) error {
	d, err := debug.Load(c.Context, path)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}

	info, err := debug.Read(d)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
