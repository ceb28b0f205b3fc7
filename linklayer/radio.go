package linklayer

// Radio is the hardware-specific scheduler the link layer consumes, per
// spec.md §6. Its implementation (timer, peripheral register access) is
// out of scope here: the link layer only calls this interface and
// reacts to the callbacks it is given.
type Radio interface {
	// ScheduleAdvertisingEvent arms the radio to transmit advPDU on
	// channel at the next opportunity, accepting a scan/connect request
	// within window (a duration in microseconds).
	ScheduleAdvertisingEvent(channel int, advPDU []byte, window int)

	// ScheduleConnectionEvent arms the radio for one connection event:
	// transmit txBuf (or nothing, if empty) and receive into rxBuf,
	// anchored at anchor (a radio-clock timestamp in microseconds) with
	// the given receive window.
	ScheduleConnectionEvent(channel int, accessAddress uint32, crcInit uint32, txBuf, rxBuf []byte, anchor, window int)

	// CancelPending aborts whatever was last scheduled.
	CancelPending()

	// Properties, fixed at construction.
	HardwareSupportsEncryption() bool
	HardwareSupports2Mbit() bool
	MaxSupportedPayloadLength() int
	SleepTimeAccuracyPPM() int
}

// AdvEvent reports what the radio observed during an advertising event.
type AdvEvent struct {
	When int // radio-clock timestamp, microseconds
	PDU  []byte
}

// ConnEvent reports what the radio observed during a connection event.
type ConnEvent struct {
	When       int
	Unacked    bool
	RXNotEmpty bool
	TXNotEmpty bool
	RXMoreData bool
}

// Callbacks is the set of radio-invoked callbacks of the radio contract;
// the radio driver is expected to call these directly (there is no
// separate registration step in this scope). StateMachine does not
// satisfy this interface: its ConnectionEventEnd also takes the received
// PDU, and it has no AdvTimeout or UserTimer method.
type Callbacks interface {
	AdvReceived(ev AdvEvent)
	AdvTimeout(now int)
	ConnectionEventEnd(ev ConnEvent)
	ConnectionTimeout(now int)
	UserTimer(when int)
}
