package atdrv

import (
	"fmt"
	"net"

	"github.com/DerAndereAndi/zeroconf/v2"
)

const (
	mdnsServiceType = "_atgateway._tcp"
	mdnsDomain      = "local."
)

// Discovery advertises the HTTP admin surface over mDNS so LAN tooling can
// find a running daemon without a configured address.
type Discovery struct {
	server *zeroconf.Server
}

// Advertise registers serviceName on port via mDNS. The returned Discovery
// must be shut down with Close when the daemon exits.
func Advertise(serviceName string, port int, ifaces []net.Interface) (*Discovery, error) {
	server, err := zeroconf.Register(serviceName, mdnsServiceType, mdnsDomain, port, nil, ifaces, zeroconf.TTL(120))
	if err != nil {
		return nil, fmt.Errorf("atdrv: mdns register: %w", err)
	}
	return &Discovery{server: server}, nil
}

// Close unregisters the mDNS advertisement.
func (d *Discovery) Close() error {
	if d.server != nil {
		d.server.Shutdown()
	}
	return nil
}
