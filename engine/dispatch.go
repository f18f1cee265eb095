package engine

import (
	"strings"

	"github.com/northlake-iot/atdrv/at"
)

type extendedHandler struct {
	id at.CommandID
	fn func(payload string) at.Policy
}

type bareHandler struct {
	message string
	fn      func(line string) at.Policy
}

// Dispatcher is the unsolicited-line dispatcher (C5). It owns two ordered
// registries — extended-command handlers and bare-message handlers — shared
// between registering callers and the RX consumer task. The engine guards
// access with its registry lock except during pre-scheduler registration
// (§4.5, §9).
type Dispatcher struct {
	table    *at.Table
	extended []extendedHandler
	bare     []bareHandler
}

// NewDispatcher creates a dispatcher that resolves extended-handler command
// identifiers against table.
func NewDispatcher(table *at.Table) *Dispatcher {
	return &Dispatcher{table: table}
}

// RegisterExtended adds a handler for unsolicited lines of the form
// "+<name(id)>:...". Handlers are tried in registration order (§4.5).
func (d *Dispatcher) RegisterExtended(id at.CommandID, fn func(payload string) at.Policy) {
	d.extended = append(d.extended, extendedHandler{id: id, fn: fn})
}

// RegisterBare adds a handler for unsolicited lines that start with
// message, tried after every extended handler has failed to match (§4.5).
// fn receives the full matched line (a bare message carries no colon-
// delimited payload to strip, unlike an extended handler's payload).
func (d *Dispatcher) RegisterBare(message string, fn func(line string) at.Policy) {
	d.bare = append(d.bare, bareHandler{message: message, fn: fn})
}

// HasBareMatch reports whether line matches a registered bare-message
// handler's prefix. Used by the classifier's Strict mode (SPEC_FULL §9) to
// decide whether a bare line arriving mid-extended-command should be
// treated as data or as an orphaned unsolicited notification.
func (d *Dispatcher) HasBareMatch(line string) bool {
	for _, h := range d.bare {
		if strings.HasPrefix(line, h.message) {
			return true
		}
	}
	return false
}

// Dispatch routes an unsolicited line per §4.5: extended handlers are tried
// first, in registration order; if none match, bare handlers are tried, in
// registration order. The first match consumes the line and stops the
// scan; Remove takes effect before the next call to Dispatch.
func (d *Dispatcher) Dispatch(line string) {
	for i, h := range d.extended {
		name := "+" + d.table.NameOf(h.id)
		if !strings.HasPrefix(line, name) {
			continue
		}
		payload := strings.TrimPrefix(line, name)
		payload = strings.TrimPrefix(payload, ":")
		payload = strings.TrimPrefix(payload, " ")
		if h.fn(payload) == at.Remove {
			d.extended = append(d.extended[:i], d.extended[i+1:]...)
		}
		return
	}

	for i, h := range d.bare {
		if !strings.HasPrefix(line, h.message) {
			continue
		}
		if h.fn(line) == at.Remove {
			d.bare = append(d.bare[:i], d.bare[i+1:]...)
		}
		return
	}
}
