package linklayer

import (
	"testing"

	"github.com/bleperiph/gatt/attr"
	"github.com/bleperiph/gatt/linklayer/radiotest"
)

type fakeDispatcher struct {
	inputs   [][]byte
	outPDU   []byte
	outCID   uint16
	hasOut   bool
	security attr.SecurityAttrs
}

func (f *fakeDispatcher) SetSecurity(s attr.SecurityAttrs) { f.security = s }
func (f *fakeDispatcher) HasPending() bool                 { return f.hasOut }

func (f *fakeDispatcher) Input(cid uint16, payload []byte) (uint16, []byte) {
	f.inputs = append(f.inputs, payload)
	return cid, nil
}

func (f *fakeDispatcher) Outbound() (uint16, []byte, bool) {
	if !f.hasOut {
		return 0, nil, false
	}
	f.hasOut = false
	return f.outCID, f.outPDU, true
}

func connectReqPDU(initiator [6]byte) []byte {
	pdu := make([]byte, 2+6+6+22)
	pdu[0] = pduConnectReq
	copy(pdu[2:8], initiator[:])  // InitA
	copy(pdu[8:14], []byte{1, 2, 3, 4, 5, 6}) // AdvA
	ll := pdu[14:]
	le32put(ll[0:4], 0x8E89BED6)
	ll[4], ll[5], ll[6] = 0x55, 0x55, 0x55
	ll[7] = 6    // WinSize
	le16put(ll[8:10], 3)
	le16put(ll[10:12], 40)
	le16put(ll[12:14], 0)
	le16put(ll[14:16], 1000)
	ll[16] = 0xFF // channels 0-7 used
	ll[17] = 0xFF
	ll[18] = 0xFF
	ll[19] = 0xFF
	ll[20] = 0x1F // channels 32-36 used
	ll[21] = 9    // hop
	return pdu
}

func le32put(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}
func le16put(b []byte, v uint16) {
	b[0], b[1] = byte(v), byte(v>>8)
}

func TestStartAdvertisingSchedulesFirstChannel(t *testing.T) {
	r := radiotest.New()
	sm := NewStateMachine(r, Config{AdvPDU: []byte{0xAA}, AdvertisingInterval: 100}, &fakeDispatcher{})
	sm.StartAdvertising()

	if sm.State() != StateAdvertising {
		t.Fatalf("expected Advertising state, got %v", sm.State())
	}
	if got := r.Last().Channel; got != 37 {
		t.Fatalf("first advertising event should use channel 37, got %d", got)
	}
}

func TestConnectReqAcceptedTransitionsToConnection(t *testing.T) {
	r := radiotest.New()
	sm := NewStateMachine(r, Config{AdvPDU: []byte{0xAA}, AdvertisingInterval: 100}, &fakeDispatcher{})
	sm.StartAdvertising()

	sm.AdvReceived(AdvEvent{PDU: connectReqPDU([6]byte{1, 1, 1, 1, 1, 1})})

	if sm.State() != StateConnection {
		t.Fatalf("expected Connection state after accepted CONNECT_REQ, got %v", sm.State())
	}
	if sm.conn.AccessAddress != 0x8E89BED6 {
		t.Errorf("access address not parsed correctly: %#x", sm.conn.AccessAddress)
	}
}

func TestConnectReqRejectedByFilterStaysAdvertising(t *testing.T) {
	r := radiotest.New()
	cfg := Config{AdvPDU: []byte{0xAA}, AdvertisingInterval: 100, AcceptInitiator: func(addr [6]byte, random bool) bool { return false }}
	sm := NewStateMachine(r, cfg, &fakeDispatcher{})
	sm.StartAdvertising()

	sm.AdvReceived(AdvEvent{PDU: connectReqPDU([6]byte{9, 9, 9, 9, 9, 9})})

	if sm.State() != StateAdvertising {
		t.Fatalf("expected to remain Advertising, got %v", sm.State())
	}
}

func TestConnectionEventEndDispatchesReceivedL2CAPFrame(t *testing.T) {
	r := radiotest.New()
	disp := &fakeDispatcher{}
	sm := NewStateMachine(r, Config{AdvPDU: []byte{0xAA}, AdvertisingInterval: 100}, disp)
	sm.StartAdvertising()
	sm.AdvReceived(AdvEvent{PDU: connectReqPDU([6]byte{1, 2, 3, 4, 5, 6})})

	// LL header: LLID=llidL2CAPStart, length=7. L2CAP frame: length=3,
	// cid=4, data={0x02, 0x40, 0x00}.
	received := []byte{0x02, 0x07, 0x03, 0x00, 0x04, 0x00, 0x02, 0x40, 0x00}
	sm.ConnectionEventEnd(ConnEvent{When: 1000}, received)

	if len(disp.inputs) != 1 {
		t.Fatalf("expected one dispatched frame, got %d", len(disp.inputs))
	}
	if string(disp.inputs[0]) != string([]byte{0x02, 0x40, 0x00}) {
		t.Errorf("got %v", disp.inputs[0])
	}
}

func TestSupervisionTimeoutDisconnects(t *testing.T) {
	r := radiotest.New()
	disconnected := ""
	sm := NewStateMachine(r, Config{AdvPDU: []byte{0xAA}, AdvertisingInterval: 100}, &fakeDispatcher{})
	sm.OnDisconnect(func(reason string) { disconnected = reason })
	sm.StartAdvertising()
	sm.AdvReceived(AdvEvent{PDU: connectReqPDU([6]byte{1, 2, 3, 4, 5, 6})})

	sm.ConnectionTimeout(12345)

	if sm.State() != StateStandby {
		t.Fatalf("expected Standby after timeout, got %v", sm.State())
	}
	if disconnected != "supervision_timeout" {
		t.Errorf("got disconnect reason %q", disconnected)
	}
}
