package gatt

import "github.com/bleperiph/gatt/linklayer"

// defaultServerMTU is the ATT server MTU advertised before any MTU
// Exchange Request, per spec.md §3 (must be >= 23).
const defaultServerMTU = 247

// defaultAdvertisingIntervalMS is the base advertising interval before
// the per-cycle perturbation described in spec.md §4.7 is added.
const defaultAdvertisingIntervalMS = 100

// defaultWriteQueueSize bounds the prepared-write arena shared by
// clients of one connection, per spec.md §4.9.
const defaultWriteQueueSize = 512

// Option configures a Server at construction time. Options are applied
// in order, so a later option overrides an earlier one touching the
// same field.
type Option func(*config)

type config struct {
	serverMTU           uint16
	advertisingInterval int
	writeQueueSize      int
	connectable         bool
	addressFilter       linklayer.AddressFilter
	scanResponse        []byte
	advertisingPacket   []byte
}

func defaultConfig() config {
	return config{
		serverMTU:           defaultServerMTU,
		advertisingInterval: defaultAdvertisingIntervalMS,
		writeQueueSize:      defaultWriteQueueSize,
		connectable:         true,
		addressFilter:       linklayer.AcceptAll,
	}
}

// WithServerMTU overrides the default ATT server MTU. Values below 23
// are raised to 23, per spec.md §3's invariant.
func WithServerMTU(mtu uint16) Option {
	return func(c *config) {
		if mtu < 23 {
			mtu = 23
		}
		c.serverMTU = mtu
	}
}

// WithAdvertisingInterval overrides the base advertising interval, in
// milliseconds, before per-cycle perturbation.
func WithAdvertisingInterval(ms int) Option {
	return func(c *config) { c.advertisingInterval = ms }
}

// WithWriteQueueSize overrides the prepared-write arena's capacity in
// bytes.
func WithWriteQueueSize(n int) Option {
	return func(c *config) { c.writeQueueSize = n }
}

// WithConnectable sets whether the server accepts CONNECT_REQ at all;
// with false every CONNECT_REQ is rejected. The advertising payload is
// the same either way.
func WithConnectable(connectable bool) Option {
	return func(c *config) { c.connectable = connectable }
}

// WithAddressFilter installs a predicate deciding whether to accept a
// given initiator's CONNECT_REQ. The default accepts every initiator.
func WithAddressFilter(f linklayer.AddressFilter) Option {
	return func(c *config) { c.addressFilter = f }
}

// WithAdvertisingPacket overrides the constructed advertising PDU
// payload (AD structures only, not the PDU header). If unset, Server
// builds one advertising the configured services.
func WithAdvertisingPacket(payload []byte) Option {
	return func(c *config) { c.advertisingPacket = payload }
}

// WithScanResponse overrides the constructed scan response payload. If
// unset and Name is non-empty, Server builds one from Name.
func WithScanResponse(payload []byte) Option {
	return func(c *config) { c.scanResponse = payload }
}
