package at

import "strings"

// CommandID identifies a command drawn from a closed, build-time
// enumeration (§3). The domain is contiguous starting at 0; basic commands
// occupy the low end, extended commands the high end (§4.1).
type CommandID int

// None is the sentinel meaning "no command currently awaited" (§3).
const None CommandID = -1

// CommandType selects the suffix applied when formatting a command line
// (§3): EXEC has none, WRITE is "=", READ is "?", TEST is "=?".
type CommandType int

const (
	Exec CommandType = iota
	Write
	Read
	Test
)

func (t CommandType) suffix() string {
	switch t {
	case Write:
		return "="
	case Read:
		return "?"
	case Test:
		return "=?"
	default:
		return ""
	}
}

// Def is one entry of a command table, at the position its CommandID will
// occupy once the table is built.
type Def struct {
	Name     string
	Extended bool
}

// Table is the compile-time command table (C1): an immutable-after-
// construction mapping from CommandID to its uppercase name and basic/
// extended classification. The engine never interprets what a command
// means — it only asks Table for names and kinds.
type Table struct {
	defs       []Def
	countBasic int
}

// NewTable builds a Table from defs, which must list every basic command
// before any extended command — the same contiguous-domain layout a
// compile-time table generator would produce. NewTable panics on a
// malformed literal, since tables are built once, at init time, from a
// fixed slice rather than from arbitrary runtime input.
func NewTable(defs []Def) *Table {
	t := &Table{defs: defs}
	seenExtended := false
	for _, d := range defs {
		switch {
		case d.Extended:
			seenExtended = true
		case seenExtended:
			panic("at: NewTable: basic command declared after an extended command")
		default:
			t.countBasic++
		}
	}
	return t
}

// NameOf returns id's uppercase name, or "" if id is out of range.
func (t *Table) NameOf(id CommandID) string {
	if !t.valid(id) {
		return ""
	}
	return t.defs[id].Name
}

// IsExtended reports whether id is an AT+ command.
func (t *Table) IsExtended(id CommandID) bool {
	if !t.valid(id) {
		return false
	}
	return t.defs[id].Extended
}

func (t *Table) valid(id CommandID) bool {
	return id >= 0 && int(id) < len(t.defs)
}

// CountBasic returns the number of basic commands, N. Basic commands
// occupy [0, N); extended commands occupy [N, Total()).
func (t *Table) CountBasic() int { return t.countBasic }

// Total returns the size of the whole command domain, M.
func (t *Table) Total() int { return len(t.defs) }

// IDOf looks up the CommandID whose name matches name (case-sensitive, no
// leading "AT" or "+"). Used by the HTTP surface to resolve a JSON command
// name into a CommandID.
func (t *Table) IDOf(name string) (CommandID, bool) {
	for i, d := range t.defs {
		if d.Name == name {
			return CommandID(i), true
		}
	}
	return None, false
}

// ParseCommandType maps the wire strings used by the HTTP surface ("EXEC",
// "WRITE", "READ", "TEST") to a CommandType.
func ParseCommandType(s string) (CommandType, bool) {
	switch s {
	case "", "EXEC":
		return Exec, true
	case "WRITE":
		return Write, true
	case "READ":
		return Read, true
	case "TEST":
		return Test, true
	default:
		return 0, false
	}
}

// FormatPrefix renders "AT" + ("+"+name if extended) + type suffix for id.
// It never includes the CRLF terminator or a WRITE payload (§4.1).
func (t *Table) FormatPrefix(id CommandID, typ CommandType) string {
	var b strings.Builder
	b.WriteString("AT")
	if t.IsExtended(id) {
		b.WriteByte('+')
	}
	b.WriteString(t.NameOf(id))
	b.WriteString(typ.suffix())
	return b.String()
}
