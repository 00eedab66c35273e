package debug

import (
	"context"
	"debug/dwarf"
	"strings"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"go.uber.org/multierr"
)

// loadWasm extracts the .debug_* custom sections from a wasm module
// and assembles them into DWARF data.  Modules built without debug
// info (or stripped) are an error.
func loadWasm(ctx context.Context, b []byte) (d *dwarf.Data, err error) {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithCustomSections(true))
	defer func() {
		err = multierr.Append(err, r.Close(ctx))
	}()

	cm, err := r.CompileModule(ctx, b)
	if err != nil {
		return nil, errors.Wrap(err, "compile module")
	}
	defer func() {
		err = multierr.Append(err, cm.Close(ctx))
	}()

	secs := map[string][]byte{}
	for _, s := range cm.CustomSections() {
		if strings.HasPrefix(s.Name(), ".debug_") {
			secs[s.Name()] = s.Data()
		}
	}

	if secs[".debug_info"] == nil {
		return nil, errors.New("module carries no .debug_info section")
	}

	d, err = dwarf.New(
		secs[".debug_abbrev"],
		secs[".debug_aranges"],
		secs[".debug_frame"],
		secs[".debug_info"],
		secs[".debug_line"],
		secs[".debug_pubnames"],
		secs[".debug_ranges"],
		secs[".debug_str"])
	return d, errors.Wrap(err, "wasm dwarf")
}
