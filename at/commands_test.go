package at_test

import (
	"testing"

	"github.com/northlake-iot/atdrv/at"
)

func TestDefaultTable_Layout(t *testing.T) {
	tbl := at.DefaultTable()

	if got, want := tbl.CountBasic(), 3; got != want {
		t.Errorf("CountBasic() = %d, want %d", got, want)
	}
	if got, want := tbl.Total(), 12; got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}
	if got, want := tbl.NameOf(at.CmdSignalQuality), "CSQ"; got != want {
		t.Errorf("NameOf(CmdSignalQuality) = %q, want %q", got, want)
	}
	if !tbl.IsExtended(at.CmdSendMessage) {
		t.Error("CmdSendMessage should be extended")
	}
	if tbl.IsExtended(at.CmdEchoOff) {
		t.Error("CmdEchoOff should be basic")
	}
}

func TestDefaultTable_FormatPrefix(t *testing.T) {
	tbl := at.DefaultTable()

	tests := []struct {
		id   at.CommandID
		typ  at.CommandType
		want string
	}{
		{at.CmdAT, at.Exec, "AT"},
		{at.CmdEchoOff, at.Exec, "ATE0"},
		{at.CmdSignalQuality, at.Read, "AT+CSQ?"},
		{at.CmdSendMessage, at.Write, "AT+CMGS="},
		{at.CmdMessageFormat, at.Test, "AT+CMGF=?"},
	}
	for _, tt := range tests {
		if got := tbl.FormatPrefix(tt.id, tt.typ); got != tt.want {
			t.Errorf("FormatPrefix(%v, %v) = %q, want %q", tt.id, tt.typ, got, tt.want)
		}
	}
}
