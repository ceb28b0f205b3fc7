package gatt

import "net"

// BDAddr (Bluetooth Device Address) is a hardware-addressed-based
// net.Addr, per spec.md §6 (static random addresses have their top two
// MSBs set to 11).
type BDAddr struct {
	net.HardwareAddr
}

// Network reports the address family, satisfying net.Addr.
func (a BDAddr) Network() string { return "BLE" }

// Conn is one active BLE connection. This scope supports exactly one
// connection at a time (spec.md's non-goal on multi-connection central
// role applies symmetrically to the peripheral side here).
type Conn interface {
	// LocalAddr returns the peripheral's own address.
	LocalAddr() BDAddr

	// RemoteAddr returns the connected central's address.
	RemoteAddr() BDAddr

	// Close ends the connection at once through the state machine; no
	// LL_TERMINATE_IND is sent to the peer.
	Close() error

	// MTU returns the connection's negotiated ATT MTU.
	MTU() int
}

type conn struct {
	server     *Server
	localAddr  BDAddr
	remoteAddr BDAddr
}

func newConn(server *Server, remote BDAddr) *conn {
	return &conn{server: server, localAddr: server.addr, remoteAddr: remote}
}

func (c *conn) LocalAddr() BDAddr  { return c.localAddr }
func (c *conn) RemoteAddr() BDAddr { return c.remoteAddr }
func (c *conn) MTU() int           { return int(c.server.engine.NegotiatedMTU()) }

func (c *conn) Close() error {
	c.server.sm.Terminate("local_close")
	return nil
}
