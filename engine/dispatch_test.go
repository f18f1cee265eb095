package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlake-iot/atdrv/at"
	"github.com/northlake-iot/atdrv/engine"
)

func dispatchTable() (*at.Table, map[string]at.CommandID) {
	names := []string{"FIRST", "SECOND", "THIRD"}
	defs := make([]at.Def, len(names))
	ids := make(map[string]at.CommandID, len(names))
	for i, n := range names {
		defs[i] = at.Def{Name: n, Extended: true}
		ids[n] = at.CommandID(i)
	}
	return at.NewTable(defs), ids
}

// S6 — one-shot unsolicited handler.
func TestDispatch_S6_OneShotHandler(t *testing.T) {
	tbl, ids := dispatchTable()
	d := engine.NewDispatcher(tbl)

	var calls []string
	d.RegisterExtended(ids["THIRD"], func(payload string) at.Policy {
		calls = append(calls, payload)
		return at.Remove
	})

	d.Dispatch("+THIRD: first")
	d.Dispatch("+THIRD: second")

	require.Len(t, calls, 1)
	assert.Equal(t, "first", calls[0])
}

// Testable property 4 — handler ordering: only the earliest-registered
// matching handler is invoked.
func TestDispatch_OnlyFirstMatchingHandlerInvoked(t *testing.T) {
	tbl, ids := dispatchTable()
	d := engine.NewDispatcher(tbl)

	var first, second bool
	d.RegisterExtended(ids["FIRST"], func(string) at.Policy {
		first = true
		return at.Keep
	})
	d.RegisterExtended(ids["FIRST"], func(string) at.Policy {
		second = true
		return at.Keep
	})

	d.Dispatch("+FIRST: x")

	assert.True(t, first, "first-registered handler should have been invoked")
	assert.False(t, second, "second-registered handler should not have been invoked")
}

func TestDispatch_ExtendedTriedBeforeBare(t *testing.T) {
	tbl, ids := dispatchTable()
	d := engine.NewDispatcher(tbl)

	var extendedHit, bareHit bool
	d.RegisterExtended(ids["FIRST"], func(string) at.Policy {
		extendedHit = true
		return at.Keep
	})
	d.RegisterBare("+FIRST", func(string) at.Policy {
		bareHit = true
		return at.Keep
	})

	d.Dispatch("+FIRST: x")

	if !extendedHit || bareHit {
		t.Errorf("extendedHit=%v bareHit=%v, want extended handler to win", extendedHit, bareHit)
	}
}

func TestDispatch_FallsBackToBareWhenNoExtendedMatches(t *testing.T) {
	tbl, _ := dispatchTable()
	d := engine.NewDispatcher(tbl)

	var gotRing bool
	d.RegisterBare("RING", func(string) at.Policy {
		gotRing = true
		return at.Keep
	})

	d.Dispatch("RING")

	if !gotRing {
		t.Error("bare handler for RING should have fired")
	}
}

func TestDispatch_HasBareMatch(t *testing.T) {
	tbl, _ := dispatchTable()
	d := engine.NewDispatcher(tbl)
	d.RegisterBare("RING", func(string) at.Policy { return at.Keep })

	if !d.HasBareMatch("RING") {
		t.Error("HasBareMatch(\"RING\") should be true")
	}
	if d.HasBareMatch("NO CARRIER") {
		t.Error("HasBareMatch(\"NO CARRIER\") should be false")
	}
}

func TestDispatch_RemoveTakesEffectBeforeNextLine(t *testing.T) {
	tbl, ids := dispatchTable()
	d := engine.NewDispatcher(tbl)

	calls := 0
	d.RegisterExtended(ids["SECOND"], func(string) at.Policy {
		calls++
		return at.Remove
	})

	d.Dispatch("+SECOND: a")
	d.Dispatch("+SECOND: b")
	d.Dispatch("+SECOND: c")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
