package l2cap

import (
	"github.com/bleperiph/gatt/att"
	"github.com/bleperiph/gatt/attr"
)

// ATTEngine is the subset of att.Engine that the dispatcher needs;
// declared as an interface so l2cap does not import att's concrete
// connection-construction details.
type ATTEngine interface {
	Process(req []byte) []byte
	Outbound() (pdu []byte, ok bool)
	SetSecurity(s attr.SecurityAttrs)
	HasPending() bool
}

// Dispatcher routes received L2CAP frames to the ATT engine, the
// signaling channel, or drops them (Security Manager channel and any
// other CID), per spec.md §4.2.
type Dispatcher struct {
	ATT       ATTEngine
	Signaling *Signaling
}

// NewDispatcher wires an ATT engine and a fresh signaling channel
// together for one connection.
func NewDispatcher(attEngine *att.Engine) *Dispatcher {
	return &Dispatcher{ATT: attEngine, Signaling: NewSignaling()}
}

// Input dispatches one received L2CAP frame by channel id, returning
// the frame to send back (with the same cid), or nil if none is due.
func (d *Dispatcher) Input(cid uint16, payload []byte) (respCID uint16, resp []byte) {
	switch cid {
	case CIDATT:
		return CIDATT, d.ATT.Process(payload)
	case CIDSignaling:
		return CIDSignaling, d.Signaling.Input(payload)
	default:
		return 0, nil
	}
}

// SetSecurity propagates the connection's current security state to the
// ATT engine, so read/write accessors can enforce encryption and
// authentication requirements.
func (d *Dispatcher) SetSecurity(s attr.SecurityAttrs) { d.ATT.SetSecurity(s) }

// HasPending reports whether either channel still has a spontaneous
// outbound frame queued, for the link layer's More Data PDU header bit.
func (d *Dispatcher) HasPending() bool {
	return d.ATT.HasPending() || d.Signaling.Pending()
}

// Outbound polls both channels for a spontaneous outbound frame
// (queued notifications/indications, or a pending signaling request),
// preferring ATT traffic since it is the data-carrying channel.
func (d *Dispatcher) Outbound() (cid uint16, pdu []byte, ok bool) {
	if pdu, ok := d.ATT.Outbound(); ok {
		return CIDATT, pdu, true
	}
	if pdu, ok := d.Signaling.Outbound(); ok {
		return CIDSignaling, pdu, true
	}
	return 0, nil, false
}
