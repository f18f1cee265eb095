package at_test

import (
	"testing"

	"github.com/northlake-iot/atdrv/at"
)

func demoDefs() []at.Def {
	return []at.Def{
		{Name: "", Extended: false},   // bare AT
		{Name: "E0", Extended: false}, // ATE0
		{Name: "E1", Extended: false}, // ATE1
		{Name: "CMEE", Extended: true},
		{Name: "CSQ", Extended: true},
		{Name: "CMGS", Extended: true},
	}
}

func TestTable_BasicExtendedSplit(t *testing.T) {
	tbl := at.NewTable(demoDefs())

	if got, want := tbl.CountBasic(), 3; got != want {
		t.Errorf("CountBasic() = %d, want %d", got, want)
	}
	if got, want := tbl.Total(), 6; got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}

	const (
		cmdAT   at.CommandID = 0
		cmdE0   at.CommandID = 1
		cmdCMEE at.CommandID = 3
		cmdCSQ  at.CommandID = 4
	)

	if tbl.IsExtended(cmdAT) {
		t.Error("bare AT should not be extended")
	}
	if tbl.IsExtended(cmdE0) {
		t.Error("ATE0 should not be extended")
	}
	if !tbl.IsExtended(cmdCMEE) {
		t.Error("+CMEE should be extended")
	}
	if got, want := tbl.NameOf(cmdCSQ), "CSQ"; got != want {
		t.Errorf("NameOf(CSQ) = %q, want %q", got, want)
	}
}

func TestTable_OutOfRange(t *testing.T) {
	tbl := at.NewTable(demoDefs())

	if got := tbl.NameOf(at.None); got != "" {
		t.Errorf("NameOf(None) = %q, want empty", got)
	}
	if tbl.IsExtended(at.CommandID(99)) {
		t.Error("IsExtended on an out-of-range id should be false")
	}
}

func TestTable_NewTablePanicsOnOutOfOrderDefs(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a basic command declared after an extended one")
		}
	}()
	at.NewTable([]at.Def{
		{Name: "CMEE", Extended: true},
		{Name: "E0", Extended: false},
	})
}

func TestTable_FormatPrefix(t *testing.T) {
	tbl := at.NewTable(demoDefs())

	const (
		cmdAT   at.CommandID = 0
		cmdE0   at.CommandID = 1
		cmdCMEE at.CommandID = 3
		cmdCSQ  at.CommandID = 4
	)

	tests := []struct {
		name string
		id   at.CommandID
		typ  at.CommandType
		want string
	}{
		{"bare exec", cmdAT, at.Exec, "AT"},
		{"basic named exec", cmdE0, at.Exec, "ATE0"},
		{"extended read", cmdCMEE, at.Read, "AT+CMEE?"},
		{"extended write", cmdCSQ, at.Write, "AT+CSQ="},
		{"extended test", cmdCSQ, at.Test, "AT+CSQ=?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.FormatPrefix(tt.id, tt.typ); got != tt.want {
				t.Errorf("FormatPrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}
