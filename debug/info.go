package debug

import (
	"debug/dwarf"
	"io"
	"sort"
	"strings"
)

// Location is a resolved source position.
type Location struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Binding is a named variable, parameter or constant visible in a
// scope.  Location is the frame-relative offset when the variable
// lives at DW_OP_fbreg; Type indexes Info.Types, -1 when the DIE
// carries no resolvable type.
type Binding struct {
	Location *int64 `json:"location"`
	Type     int    `json:"type"`
}

// Type is a node in the type graph.  Parent follows DW_AT_type
// references (e.g. a pointer type's pointee).
type Type struct {
	Kind   string `json:"kind"`
	Parent *int   `json:"parent,omitempty"`
}

// Scope is a lexical scope: the synthetic global scope, a subprogram,
// or a nested block.  Parent indexes Info.Scopes.
type Scope struct {
	Name     string              `json:"name,omitempty"`
	Start    *Location           `json:"start,omitempty"`
	End      *Location           `json:"end,omitempty"`
	Bindings map[string]*Binding `json:"bindings"`
	Parent   *int                `json:"parent,omitempty"`
}

// Info is the subset of debugging information we care about, massaged
// into a shape that serializes cleanly.
type Info struct {
	Types  []*Type  `json:"types"`
	Scopes []*Scope `json:"scopes"`
}

// Read walks the DIE tree and accumulates scope, binding and type
// information.  Scope order is document order; each scope's bindings
// are its own, unaffected by scopes nested within it.
func Read(d *dwarf.Data) (*Info, error) {
	v := &visitor{
		data:     d,
		typeDIEs: map[dwarf.Offset]*dwarf.Entry{},
		typeIdx:  map[dwarf.Offset]int{},
		info: &Info{
			Types: []*Type{},
			Scopes: []*Scope{{
				Name:     "Global",
				Bindings: map[string]*Binding{},
			}},
		},
	}

	if err := v.collectTypes(); err != nil {
		return nil, err
	}

	if err := v.walk(); err != nil {
		return nil, err
	}

	return v.info, nil
}

type visitor struct {
	data     *dwarf.Data
	info     *Info
	typeDIEs map[dwarf.Offset]*dwarf.Entry
	typeIdx  map[dwarf.Offset]int
	lines    *lineTable
	scopes   []int // scope stack; indices into info.Scopes
	frames   []int // DIE nesting; scope index or -1 per open DIE
}

// collectTypes indexes every type DIE by offset up front, so that
// DW_AT_type references resolve regardless of where they point.
func (v *visitor) collectTypes() error {
	r := v.data.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			return err
		} else if e == nil {
			return nil
		}

		if isTypeTag(e.Tag) {
			v.typeDIEs[e.Offset] = e
		}
	}
}

func (v *visitor) walk() error {
	v.scopes = []int{0}

	r := v.data.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			return err
		} else if e == nil {
			return nil
		}

		if e.Tag == 0 { // end of a set of children
			if n := len(v.frames); n > 0 {
				if v.frames[n-1] >= 0 {
					v.scopes = v.scopes[:len(v.scopes)-1]
				}
				v.frames = v.frames[:n-1]
			}
			continue
		}

		frame := -1
		switch e.Tag {
		case dwarf.TagCompileUnit:
			lines, err := newLineTable(v.data, e)
			if err != nil {
				return err
			}
			v.lines = lines

		case dwarf.TagSubprogram, dwarf.TagLexDwarfBlock,
			dwarf.TagTryDwarfBlock, dwarf.TagCatchDwarfBlock:
			frame = v.addScope(e)

		case dwarf.TagVariable, dwarf.TagFormalParameter, dwarf.TagConstant:
			v.addBinding(e)

		default:
			if isTypeTag(e.Tag) {
				v.getOrCreateType(e.Offset)
			}
		}

		if e.Children {
			v.frames = append(v.frames, frame)
			if frame >= 0 {
				v.scopes = append(v.scopes, frame)
			}
		}
	}
}

func (v *visitor) current() *Scope {
	return v.info.Scopes[v.scopes[len(v.scopes)-1]]
}

func (v *visitor) addScope(e *dwarf.Entry) int {
	scope := &Scope{
		Bindings: map[string]*Binding{},
	}

	if name, ok := e.Val(dwarf.AttrName).(string); ok {
		scope.Name = name
	}

	parent := v.scopes[len(v.scopes)-1]
	scope.Parent = &parent

	if low, ok := e.Val(dwarf.AttrLowpc).(uint64); ok {
		scope.Start = v.lines.locate(low)

		switch high := e.Val(dwarf.AttrHighpc).(type) {
		case uint64: // address
			scope.End = v.lines.locate(high)
		case int64: // offset from low pc
			scope.End = v.lines.locate(low + uint64(high))
		}
	}

	idx := len(v.info.Scopes)
	v.info.Scopes = append(v.info.Scopes, scope)
	return idx
}

func (v *visitor) addBinding(e *dwarf.Entry) {
	name, ok := e.Val(dwarf.AttrName).(string)
	if !ok {
		return // anonymous; nothing to bind
	}

	b := &Binding{Type: -1}

	if off, ok := e.Val(dwarf.AttrType).(dwarf.Offset); ok {
		b.Type = v.getOrCreateType(off)
	}

	// A frame-relative location (DW_OP_fbreg <sleb128>) is the only
	// expression we decode.
	if expr, ok := e.Val(dwarf.AttrLocation).([]byte); ok {
		const opFbreg = 0x91
		if len(expr) > 1 && expr[0] == opFbreg {
			if off, ok := sleb128(expr[1:]); ok {
				b.Location = &off
			}
		}
	}

	v.current().Bindings[name] = b
}

// getOrCreateType returns the index of the type for the DIE at off,
// creating it (and its parent chain) on first use.  Unresolvable
// references yield -1.
func (v *visitor) getOrCreateType(off dwarf.Offset) int {
	if idx, ok := v.typeIdx[off]; ok {
		return idx
	}

	die, ok := v.typeDIEs[off]
	if !ok {
		return -1
	}

	t := &Type{Kind: kindName(die.Tag)}

	// Reserve the index before chasing the parent reference, so
	// reference cycles (pointer to struct to pointer ...) terminate.
	idx := len(v.info.Types)
	v.typeIdx[off] = idx
	v.info.Types = append(v.info.Types, t)

	if po, ok := die.Val(dwarf.AttrType).(dwarf.Offset); ok {
		if parent := v.getOrCreateType(po); parent >= 0 {
			t.Parent = &parent
		}
	}

	return idx
}

func isTypeTag(t dwarf.Tag) bool {
	switch t {
	case dwarf.TagBaseType, dwarf.TagConstType, dwarf.TagStructType,
		dwarf.TagClassType, dwarf.TagPointerType, dwarf.TagEnumerationType,
		dwarf.TagUnionType, dwarf.TagSubrangeType, dwarf.TagArrayType,
		dwarf.TagTypedef, dwarf.TagSubroutineType, dwarf.TagVolatileType,
		dwarf.TagRestrictType, dwarf.TagStringType, dwarf.TagUnspecifiedType:
		return true
	}
	return false
}

// kindName renders a tag as a DWARF-style snake name, e.g.
// "structure_type" for DW_TAG_structure_type.
func kindName(t dwarf.Tag) string {
	switch t {
	case dwarf.TagBaseType:
		return "base_type"
	case dwarf.TagConstType:
		return "const_type"
	case dwarf.TagStructType:
		return "structure_type"
	case dwarf.TagClassType:
		return "class_type"
	case dwarf.TagPointerType:
		return "pointer_type"
	case dwarf.TagEnumerationType:
		return "enumeration_type"
	case dwarf.TagUnionType:
		return "union_type"
	case dwarf.TagSubrangeType:
		return "subrange_type"
	case dwarf.TagArrayType:
		return "array_type"
	case dwarf.TagTypedef:
		return "typedef"
	case dwarf.TagSubroutineType:
		return "subroutine_type"
	case dwarf.TagVolatileType:
		return "volatile_type"
	case dwarf.TagRestrictType:
		return "restrict_type"
	case dwarf.TagStringType:
		return "string_type"
	case dwarf.TagUnspecifiedType:
		return "unspecified_type"
	default:
		return strings.ToLower(t.String())
	}
}

// lineTable is a compile unit's line program, slurped once and
// searched by address.
type lineTable struct {
	entries []dwarf.LineEntry
}

func newLineTable(d *dwarf.Data, cu *dwarf.Entry) (*lineTable, error) {
	t := &lineTable{}

	lr, err := d.LineReader(cu)
	if err != nil || lr == nil {
		return t, nil // no line table for this unit
	}

	var le dwarf.LineEntry
	for {
		if err := lr.Next(&le); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		t.entries = append(t.entries, le)
	}

	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Address < t.entries[j].Address
	})

	return t, nil
}

// locate returns the source position covering pc, or nil when pc is
// outside the line program.
func (t *lineTable) locate(pc uint64) *Location {
	if t == nil || len(t.entries) == 0 {
		return nil
	}

	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Address > pc
	})
	if i == 0 {
		return nil
	}

	e := t.entries[i-1]
	if e.EndSequence || e.File == nil {
		return nil
	}

	return &Location{
		Source: e.File.Name,
		Line:   e.Line,
		Column: e.Column,
	}
}

// sleb128 decodes a signed LEB128 value, reporting false on truncated
// input.
func sleb128(b []byte) (int64, bool) {
	var result int64
	var shift uint

	for _, c := range b {
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				result |= -1 << shift
			}
			return result, true
		}
	}

	return 0, false
}
