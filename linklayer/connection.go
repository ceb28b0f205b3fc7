package linklayer

import (
	"github.com/bleperiph/gatt/attr"
)

// PairingStatus mirrors the security state spec.md §3 requires the
// connection to track.
type PairingStatus int

const (
	PairingNone PairingStatus = iota
	PairingUnauthenticatedKey
	PairingAuthenticatedKey
	PairingAuthenticatedSecureConnection
)

// Connection holds the per-connection mutable state described in
// spec.md §3: negotiated MTU, security state, the active channel map
// and hop, connection timing parameters, and TX/RX sequence-number
// bookkeeping. It is created on CONNECT_REQ, mutated only from the
// link-layer's own thread of control, and destroyed on disconnect.
type Connection struct {
	AccessAddress uint32
	CRCInit       uint32

	ChannelMap *ChannelMap
	pendingMap *ChannelMap
	mapInstant uint16
	mapArmed   bool

	WindowSize            int
	WindowOffset          int
	Interval              int // 1.25 ms units
	SlaveLatency          int // events
	SupervisionTimeout    int // 10 ms units
	SleepClockAccuracyPPM int

	pendingUpdate *connUpdateParams
	updateInstant uint16
	updateArmed   bool

	Encrypted bool
	Pairing   PairingStatus

	eventCounter uint16
	lastChannel  int

	txSN        bool
	nextRxSN    bool
	lastUnacked bool

	// sentVersionInd tracks whether this side has already transmitted
	// LL_VERSION_IND, per the Bluetooth core spec's rule that the
	// procedure runs at most once per connection.
	sentVersionInd bool
}

// SecurityAttrs derives the connection's current security posture from
// Encrypted/Pairing for the ATT engine's access-control checks.
func (c *Connection) SecurityAttrs() attr.SecurityAttrs {
	return attr.SecurityAttrs{
		Encrypted:        c.Encrypted,
		Authenticated:    c.Pairing == PairingAuthenticatedKey || c.Pairing == PairingAuthenticatedSecureConnection,
		SecureConnection: c.Pairing == PairingAuthenticatedSecureConnection,
	}
}

// connUpdateParams holds the fields of an LL_CONNECTION_UPDATE_IND
// pending activation at an event-counter instant.
type connUpdateParams struct {
	WindowSize         int
	WindowOffset       int
	Interval           int
	SlaveLatency       int
	SupervisionTimeout int
}

// NewConnection builds connection state from a CONNECT_REQ's
// parameters.
func NewConnection(accessAddress, crcInit uint32, chanMap *ChannelMap, windowSize, windowOffset, interval, slaveLatency, supervisionTimeout int) *Connection {
	return &Connection{
		AccessAddress:      accessAddress,
		CRCInit:            crcInit,
		ChannelMap:         chanMap,
		WindowSize:         windowSize,
		WindowOffset:       windowOffset,
		Interval:           interval,
		SlaveLatency:       slaveLatency,
		SupervisionTimeout: supervisionTimeout,
		lastChannel:        -1,
	}
}

// EventCounter returns the current connection event counter.
func (c *Connection) EventCounter() uint16 { return c.eventCounter }

// NextChannel computes the channel for the upcoming event and advances
// the event counter and last-used channel. On the very first event
// (lastChannel == -1) it returns the first used channel directly, since
// there is no prior channel to hop from.
func (c *Connection) NextChannel() int {
	activeMap := c.ChannelMap
	if c.mapArmed && InstantHasPassed(c.eventCounter, c.mapInstant) {
		activeMap = c.pendingMap
		c.ChannelMap = c.pendingMap
		c.pendingMap = nil
		c.mapArmed = false
	}
	if c.updateArmed && InstantHasPassed(c.eventCounter, c.updateInstant) {
		c.WindowSize = c.pendingUpdate.WindowSize
		c.WindowOffset = c.pendingUpdate.WindowOffset
		c.Interval = c.pendingUpdate.Interval
		c.SlaveLatency = c.pendingUpdate.SlaveLatency
		c.SupervisionTimeout = c.pendingUpdate.SupervisionTimeout
		c.pendingUpdate = nil
		c.updateArmed = false
	}

	var next int
	if c.lastChannel < 0 {
		next = activeMap.UsedChannels()[0]
	} else {
		next = activeMap.NextChannel(c.lastChannel)
	}
	c.lastChannel = next
	c.eventCounter++
	return next
}

// ArmChannelMapUpdate schedules a new channel map to take effect at
// event-counter instant, per spec.md §4.7. If instant has already
// passed, ok is false and the connection must be dropped.
func (c *Connection) ArmChannelMapUpdate(newMap *ChannelMap, instant uint16) (ok bool) {
	if InstantHasPassed(c.eventCounter, instant) {
		return false
	}
	c.pendingMap = newMap
	c.mapInstant = instant
	c.mapArmed = true
	return true
}

// ArmConnectionUpdate schedules new connection timing parameters to
// take effect at event-counter instant, per the LL_CONNECTION_UPDATE_IND
// procedure. If instant has already passed, ok is false.
func (c *Connection) ArmConnectionUpdate(params connUpdateParams, instant uint16) (ok bool) {
	if InstantHasPassed(c.eventCounter, instant) {
		return false
	}
	c.pendingUpdate = &params
	c.updateInstant = instant
	c.updateArmed = true
	return true
}

// OnReceivedSN updates SN/NESN bookkeeping for a received data PDU, per
// spec.md §4.7 step 3: nesn acknowledges our last transmission; sn,
// when it matches the expected value, means the payload is new (not a
// retransmit) and should be delivered; accepted reports whether the
// caller should treat the PDU as new data.
func (c *Connection) OnReceivedSN(sn, nesn bool) (accepted bool) {
	if nesn == c.txSN {
		c.lastUnacked = false
	}
	if sn == c.nextRxSN {
		c.nextRxSN = !c.nextRxSN
		return true
	}
	return false
}

// AdvanceTxSN increments our transmit sequence number after sending a
// genuinely new (non-retransmit) PDU.
func (c *Connection) AdvanceTxSN() {
	c.txSN = !c.txSN
	c.lastUnacked = true
}

// TxSN and NextRxSN expose the current flags for PDU header construction.
func (c *Connection) TxSN() bool     { return c.txSN }
func (c *Connection) NextRxSN() bool { return c.nextRxSN }

// LastUnacked reports whether the most recently transmitted PDU has not
// yet been acknowledged by the peer's NESN, meaning it must be
// retransmitted verbatim on the next connection event rather than
// replaced with fresh data.
func (c *Connection) LastUnacked() bool { return c.lastUnacked }
