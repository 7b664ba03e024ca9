package voice

import (
	"sort"
	"strings"
)

// Mapping pairs an abstract voice with the names each synthesis tier understands.
type Mapping struct {
	Name    string
	Backend string
	Local   string
}

// Default is the abstract voice used when a name is unknown.
const Default = "Puck"

var builtin = map[string]Mapping{
	"puck":   {Name: "Puck", Backend: "Puck", Local: "Daniel"},
	"charon": {Name: "Charon", Backend: "Charon", Local: "Alex"},
	"kore":   {Name: "Kore", Backend: "Kore", Local: "Samantha"},
	"fenrir": {Name: "Fenrir", Backend: "Fenrir", Local: "Fred"},
	"aoede":  {Name: "Aoede", Backend: "Aoede", Local: "Karen"},
	"leda":   {Name: "Leda", Backend: "Leda", Local: "Victoria"},
	"orus":   {Name: "Orus", Backend: "Orus", Local: "Tom"},
	"zephyr": {Name: "Zephyr", Backend: "Zephyr", Local: "Moira"},
}

// Table is an immutable voice lookup. The zero value is not usable; use NewTable.
type Table struct {
	def Mapping
}

// NewTable returns a table whose unknown names resolve to defaultName.
// An unknown defaultName falls back to Default.
func NewTable(defaultName string) *Table {
	m, ok := lookup(defaultName)
	if !ok {
		m = builtin[strings.ToLower(Default)]
	}
	return &Table{def: m}
}

// Resolve never fails: unrecognized input returns the table default.
func (t *Table) Resolve(name string) Mapping {
	if m, ok := lookup(name); ok {
		return m
	}
	return t.def
}

func (t *Table) Default() Mapping { return t.def }

func (t *Table) Known(name string) bool {
	_, ok := lookup(name)
	return ok
}

// Names lists the abstract voices in the table.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for _, m := range builtin {
		out = append(out, m.Name)
	}
	sort.Strings(out)
	return out
}

var std = NewTable(Default)

// Resolve looks name up in the built-in table.
func Resolve(name string) Mapping { return std.Resolve(name) }

func lookup(name string) (Mapping, bool) {
	m, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}
