package linklayer

import (
	"github.com/bleperiph/gatt/adv"
	"github.com/bleperiph/gatt/attr"
	"github.com/bleperiph/gatt/internal/logx"
)

// State is one of the link-layer's top-level states, per spec.md §4.7.
type State int

const (
	StateStandby State = iota
	StateAdvertising
	StateInitiating
	StateConnection
)

func (s State) String() string {
	switch s {
	case StateStandby:
		return "standby"
	case StateAdvertising:
		return "advertising"
	case StateInitiating:
		return "initiating"
	case StateConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// PDU header bits for advertising channel PDUs this layer recognizes.
const (
	pduAdvInd        = 0x0
	pduAdvDirectInd  = 0x1
	pduAdvNonconnInd = 0x2
	pduScanReq       = 0x3
	pduScanRsp       = 0x4
	pduConnectReq    = 0x5
	pduAdvScanInd    = 0x6
)

// AddressFilter decides whether a CONNECT_REQ from a given initiator
// address should be accepted; SCAN_REQs are not filtered. Returning true
// unconditionally implements an "accept all" peripheral.
type AddressFilter func(addr [6]byte, randomAddr bool) bool

// AcceptAll is an AddressFilter that accepts every initiator.
func AcceptAll(addr [6]byte, randomAddr bool) bool { return true }

// Dispatcher is the subset of *l2cap.Dispatcher the state machine
// drives, declared as an interface to keep this package's surface
// testable without constructing a full ATT engine.
type Dispatcher interface {
	Input(cid uint16, payload []byte) (respCID uint16, resp []byte)
	Outbound() (cid uint16, pdu []byte, ok bool)
	SetSecurity(s attr.SecurityAttrs)
	HasPending() bool
}

// Config bundles the fixed parameters of one link-layer instance.
type Config struct {
	AdvPDU              []byte // pre-built ADV_IND/ADV_NONCONN_IND etc. payload
	ScanRspPDU          []byte
	Connectable         bool
	AdvertisingInterval int // milliseconds
	AcceptInitiator     AddressFilter
}

// StateMachine implements the link-layer state machine of spec.md
// §4.7: advertising with channel rotation, connection establishment,
// and per-event scheduling once connected. It owns no radio timer
// itself; Radio callbacks drive it, and it drives Radio in turn.
type StateMachine struct {
	radio Radio
	cfg   Config
	disp  Dispatcher

	state       State
	rot         *adv.Rotation
	lastAdvChan int
	conn        *Connection

	// pendingLLCtrl holds a not-yet-transmitted LL control response
	// (e.g. LL_FEATURE_RSP, LL_PING_RSP); it takes priority over
	// outbound L2CAP data on the next connection event, since only one
	// PDU is transmitted per event in this model.
	pendingLLCtrl []byte

	// lastTxLLID/lastTxPayload record the most recently transmitted
	// frame so it can be retransmitted verbatim while Connection.
	// LastUnacked is true, per spec.md §4.7's SN/NESN retransmission
	// rule.
	lastTxLLID    byte
	lastTxPayload []byte

	onConnect    func()
	onDisconnect func(reason string)
}

// NewStateMachine wires a radio, configuration, and L2CAP dispatcher
// (typically *l2cap.Dispatcher) into an idle, Standby state machine.
func NewStateMachine(radio Radio, cfg Config, disp Dispatcher) *StateMachine {
	if cfg.AcceptInitiator == nil {
		cfg.AcceptInitiator = AcceptAll
	}
	return &StateMachine{radio: radio, cfg: cfg, disp: disp, state: StateStandby, rot: adv.NewRotation()}
}

// OnDisconnect installs a callback invoked when the connection ends,
// per spec.md §7: link failures transition to Standby and report to
// the application via this hook if installed.
func (sm *StateMachine) OnDisconnect(fn func(reason string)) { sm.onDisconnect = fn }

// OnConnect installs a callback invoked once a CONNECT_REQ has been
// accepted and the state machine has transitioned to Connection.
func (sm *StateMachine) OnConnect(fn func()) { sm.onConnect = fn }

// State returns the current top-level state.
func (sm *StateMachine) State() State { return sm.state }

// StartAdvertising transitions Standby -> Advertising and schedules the
// first advertising PDU.
func (sm *StateMachine) StartAdvertising() {
	if sm.state != StateStandby {
		return
	}
	sm.state = StateAdvertising
	sm.rot = adv.NewRotation()
	sm.scheduleNextAdvPDU()
}

func (sm *StateMachine) scheduleNextAdvPDU() {
	ch, _ := sm.rot.Next()
	sm.lastAdvChan = ch
	sm.radio.ScheduleAdvertisingEvent(ch, sm.cfg.AdvPDU, sm.cfg.AdvertisingInterval*1000)
}

// AdvReceived handles a PDU the radio received during an advertising
// event: a SCAN_REQ (answer with scan response) or a CONNECT_REQ
// (accept or reject per the address filter, and if accepted, transition
// to Connection).
func (sm *StateMachine) AdvReceived(ev AdvEvent) {
	if sm.state != StateAdvertising || len(ev.PDU) < 2 {
		return
	}
	pduType := ev.PDU[0] & 0x0F
	txAddrRandom := ev.PDU[0]&0x40 != 0

	switch pduType {
	case pduScanReq:
		if sm.cfg.ScanRspPDU != nil {
			sm.radio.ScheduleAdvertisingEvent(sm.lastAdvChan, sm.cfg.ScanRspPDU, sm.cfg.AdvertisingInterval*1000)
		}
	case pduConnectReq:
		if len(ev.PDU) < 2+6+6+22 {
			return
		}
		var initiator [6]byte
		copy(initiator[:], ev.PDU[2:8])
		if !sm.cfg.AcceptInitiator(initiator, txAddrRandom) {
			return
		}
		sm.enterConnection(ev.PDU[2+6+6:])
	}
}

// enterConnection parses the CONNECT_REQ's LLData and transitions to
// the Connection state.
func (sm *StateMachine) enterConnection(llData []byte) {
	if len(llData) < 22 {
		return
	}
	aa := le32(llData[0:4])
	crcInit := le24(llData[4:7])
	winSize := int(llData[7])
	winOffset := int(le16(llData[8:10]))
	interval := int(le16(llData[10:12]))
	latency := int(le16(llData[12:14]))
	timeout := int(le16(llData[14:16]))
	chM := llData[16:21]
	hop := int(llData[21] & 0x1F)

	used := make([]int, 0, NumDataChannels)
	for i := 0; i < NumDataChannels; i++ {
		if chM[i/8]&(1<<uint(i%8)) != 0 {
			used = append(used, i)
		}
	}
	cm := NewChannelMap(used, hop)
	sm.conn = NewConnection(aa, crcInit, cm, winSize, winOffset, interval, latency, timeout)
	sm.state = StateConnection
	sm.disp.SetSecurity(sm.conn.SecurityAttrs())
	logx.Get().WithField("state", sm.state.String()).Debug("link layer: connection established")
	if sm.onConnect != nil {
		sm.onConnect()
	}
}

// Data channel PDU header bits, per the Bluetooth core spec: bits 0-1
// are the LLID, bit 2 is NESN, bit 3 is SN, bit 4 is MD.
const (
	headerBitNESN = 1 << 2
	headerBitSN   = 1 << 3
	headerBitMD   = 1 << 4
)

// ConnectionEventEnd processes one connection event: validate the
// received PDU's SN/NESN against Connection's flow-control state,
// deliver a genuinely new payload to the L2CAP dispatcher or LL
// control-PDU handler, then schedule the next event's transmission per
// spec.md §4.7 step 4.
//
// received, when non-empty, is one data channel PDU: a 2-byte header
// (byte 0 per the bit layout above, byte 1 the payload length) followed
// by that many bytes of payload. An L2CAP payload (LLID llidL2CAPStart)
// itself begins with a 2-byte L2CAP length and 2-byte channel ID; an LL
// control payload (LLID llidControl) begins with a 1-byte opcode.
func (sm *StateMachine) ConnectionEventEnd(ev ConnEvent, received []byte) {
	if sm.state != StateConnection || sm.conn == nil {
		return
	}
	if len(received) >= 2 {
		n := int(received[1])
		if len(received) >= 2+n {
			sn := received[0]&headerBitSN != 0
			nesn := received[0]&headerBitNESN != 0
			accepted := sm.conn.OnReceivedSN(sn, nesn)
			if accepted {
				payload := received[2 : 2+n]
				switch received[0] & 0x03 {
				case llidControl:
					if len(payload) >= 1 {
						sm.processLLControl(payload[0], payload[1:])
					}
				case llidL2CAPStart:
					if len(payload) >= 4 {
						cid := le16(payload[2:4])
						l2capLen := le16(payload[0:2])
						data := payload[4:]
						if int(l2capLen) <= len(data) {
							data = data[:l2capLen]
						}
						sm.disp.Input(cid, data)
					}
				}
			}
		}
	}
	if sm.state != StateConnection {
		// an LL_TERMINATE_IND or instant-passed violation processed
		// above may have already torn down the connection.
		return
	}

	ch := sm.conn.NextChannel()
	var llid byte
	var payload []byte
	if sm.conn.LastUnacked() {
		llid, payload = sm.lastTxLLID, sm.lastTxPayload
	} else if sm.pendingLLCtrl != nil {
		llid, payload = llidControl, sm.pendingLLCtrl
		sm.pendingLLCtrl = nil
	} else if cid, pdu, ok := sm.disp.Outbound(); ok {
		frame := make([]byte, 0, 4+len(pdu))
		frame = append(frame, byte(len(pdu)), byte(len(pdu)>>8), byte(cid), byte(cid>>8))
		frame = append(frame, pdu...)
		llid, payload = llidL2CAPStart, frame
	}

	var tx []byte
	if payload != nil {
		header := llid
		sn := sm.conn.TxSN()
		if sm.conn.LastUnacked() {
			// a retransmission carries the SN it was first sent with
			sn = !sn
		}
		if sn {
			header |= headerBitSN
		}
		if sm.conn.NextRxSN() {
			header |= headerBitNESN
		}
		if sm.disp.HasPending() {
			header |= headerBitMD
		}
		tx = append([]byte{header, byte(len(payload))}, payload...)
		if !sm.conn.LastUnacked() {
			sm.lastTxLLID, sm.lastTxPayload = llid, payload
			sm.conn.AdvanceTxSN()
		}
	}
	sm.radio.ScheduleConnectionEvent(ch, sm.conn.AccessAddress, sm.conn.CRCInit, tx, make([]byte, sm.radio.MaxSupportedPayloadLength()), ev.When+sm.conn.Interval*1250, sm.conn.WindowSize*1250)
}

// processLLControl hands a received LL Control PDU to handleLLControl
// and queues any response for transmission on the next event.
// pendingLLCtrl holds only the control payload (opcode+params);
// ConnectionEventEnd is responsible for the single LL header framing.
func (sm *StateMachine) processLLControl(opcode byte, params []byte) {
	respOpcode, respParams, hasResp := sm.handleLLControl(opcode, params)
	if !hasResp {
		return
	}
	sm.pendingLLCtrl = append([]byte{respOpcode}, respParams...)
}

// ConnectionTimeout handles a supervision timeout: per spec.md §7, this
// is equivalent to a disconnect.
func (sm *StateMachine) ConnectionTimeout(now int) {
	sm.disconnect("supervision_timeout")
}

// Terminate handles an explicit LL_TERMINATE_IND or application-driven
// disconnect.
func (sm *StateMachine) Terminate(reason string) {
	sm.disconnect(reason)
}

func (sm *StateMachine) disconnect(reason string) {
	if sm.state != StateConnection {
		return
	}
	sm.conn = nil
	sm.state = StateStandby
	sm.radio.CancelPending()
	if sm.onDisconnect != nil {
		sm.onDisconnect(reason)
	}
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le24(b []byte) uint32 { return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 }
func le32(b []byte) uint32 { return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24 }
