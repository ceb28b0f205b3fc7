// Package radiotest provides a deterministic fake Radio for exercising
// the link-layer state machine without real hardware.
package radiotest

// Scheduled records the most recent scheduling call the state machine
// made, whichever kind it was.
type Scheduled struct {
	Advertising bool
	Channel     int
	TxBuf       []byte
	RxBuf       []byte
	Window      int
	Anchor      int
	AccessAddr  uint32
	CRCInit     uint32
}

// Radio is a fake linklayer.Radio that records every scheduling call
// instead of touching hardware.
type Radio struct {
	Scheduled []Scheduled
	Canceled  int

	Encryption     bool
	TwoMbit        bool
	MaxPayloadLen  int
	SleepAccuracy  int
}

// New returns a fake radio with conservative default properties.
func New() *Radio {
	return &Radio{MaxPayloadLen: 251, SleepAccuracy: 50}
}

func (r *Radio) ScheduleAdvertisingEvent(channel int, advPDU []byte, window int) {
	r.Scheduled = append(r.Scheduled, Scheduled{Advertising: true, Channel: channel, TxBuf: advPDU, Window: window})
}

func (r *Radio) ScheduleConnectionEvent(channel int, accessAddress, crcInit uint32, txBuf, rxBuf []byte, anchor, window int) {
	r.Scheduled = append(r.Scheduled, Scheduled{
		Channel: channel, TxBuf: txBuf, RxBuf: rxBuf, Anchor: anchor, Window: window,
		AccessAddr: accessAddress, CRCInit: crcInit,
	})
}

func (r *Radio) CancelPending() { r.Canceled++ }

func (r *Radio) HardwareSupportsEncryption() bool { return r.Encryption }
func (r *Radio) HardwareSupports2Mbit() bool      { return r.TwoMbit }
func (r *Radio) MaxSupportedPayloadLength() int   { return r.MaxPayloadLen }
func (r *Radio) SleepTimeAccuracyPPM() int        { return r.SleepAccuracy }

// Last returns the most recent scheduling call, or the zero value if
// none happened yet.
func (r *Radio) Last() Scheduled {
	if len(r.Scheduled) == 0 {
		return Scheduled{}
	}
	return r.Scheduled[len(r.Scheduled)-1]
}
