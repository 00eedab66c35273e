// Package debug reconstructs lexical scope and variable binding
// information from the DWARF data embedded in a compiled binary.  It
// understands native ELF and Mach-O objects as well as WebAssembly
// modules carrying .debug_* custom sections.
package debug

import (
	"bytes"
	"context"
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"os"

	"github.com/pkg/errors"
)

var (
	elfMagic  = []byte{0x7f, 'E', 'L', 'F'}
	wasmMagic = []byte{0x00, 'a', 's', 'm'}
)

// Load sniffs the binary format at path and returns its DWARF data.
func Load(ctx context.Context, path string) (*dwarf.Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read binary")
	}

	switch {
	case bytes.HasPrefix(b, elfMagic):
		return loadELF(path)
	case bytes.HasPrefix(b, wasmMagic):
		return loadWasm(ctx, b)
	default:
		return loadMacho(path)
	}
}

func loadELF(path string) (*dwarf.Data, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open elf")
	}
	defer f.Close()

	d, err := f.DWARF()
	return d, errors.Wrap(err, "elf dwarf")
}

func loadMacho(path string) (*dwarf.Data, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unrecognized binary format")
	}
	defer f.Close()

	d, err := f.DWARF()
	return d, errors.Wrap(err, "mach-o dwarf")
}
