package att

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bleperiph/gatt/attr"
	"github.com/bleperiph/gatt/internal/metrics"
	"github.com/bleperiph/gatt/uuid"
)

func newTestEngine(t *testing.T, serverMTU uint16) *Engine {
	t.Helper()
	svc := attr.NewService(uuid.New16(0x180D))
	svc.AddCharacteristic(uuid.New16(0x2A37)).
		HandleRead(attr.StaticValue([]byte{0x00, 0x42})).
		EnableNotify(1)
	svc.AddCharacteristic(uuid.New16(0x2A39)).
		HandleWrite(func(data []byte) attr.AccessResult { return attr.ResultSuccess })

	table, err := attr.BuildTable("scenario-device", []*attr.Service{svc})
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	return NewEngine(table, serverMTU, 128)
}

// TestFindInformationEmptyRangeRejected reproduces spec.md §8 Scenario 1.
func TestFindInformationEmptyRangeRejected(t *testing.T) {
	e := newTestEngine(t, 65)
	req := []byte{0x04, 0x00, 0x00, 0xFF, 0xFF}
	want := []byte{0x01, 0x04, 0x00, 0x00, 0x01}
	if got := e.Process(req); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

// TestFindInformationStartAfterEnd reproduces spec.md §8 Scenario 2.
func TestFindInformationStartAfterEnd(t *testing.T) {
	e := newTestEngine(t, 65)
	req := []byte{0x04, 0x06, 0x00, 0x05, 0x00}
	want := []byte{0x01, 0x04, 0x06, 0x00, 0x01}
	if got := e.Process(req); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

// TestMTUExchange reproduces spec.md §8 Scenario 3.
func TestMTUExchange(t *testing.T) {
	e := newTestEngine(t, 65)
	req := []byte{0x02, 0x40, 0x00}
	want := []byte{0x03, 0x41, 0x00}
	if got := e.Process(req); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
	if mtu := e.NegotiatedMTU(); mtu != 64 {
		t.Errorf("negotiated mtu = %d, want 64", mtu)
	}
}

func TestReadRequestUnknownHandleIsInvalidHandle(t *testing.T) {
	e := newTestEngine(t, 65)
	req := []byte{0x0A, 0xFF, 0xFF}
	resp := e.Process(req)
	if len(resp) != 5 || resp[0] != opError || resp[4] != ecodeInvalidHandle {
		t.Errorf("got % x, want an invalid_handle error response", resp)
	}
}

func TestWriteCommandProducesNoResponse(t *testing.T) {
	e := newTestEngine(t, 65)
	// Find the write-enabled characteristic's value handle via Read By
	// Group Type + Read By Type would be more end-to-end, but for this
	// unit test we know it is the second characteristic's value, handle
	// 14 given the fixed GAP/GATT default-service layout.
	var handle uint16
	tbl := e.table
	for h := uint16(1); h <= tbl.MaxHandle(); h++ {
		if ent, ok := tbl.At(h); ok && ent.Kind == attr.KindCharacteristicValue && ent.UUID.Equal(uuid.New16(0x2A39)) {
			handle = h
		}
	}
	if handle == 0 {
		t.Fatalf("could not locate test characteristic's value handle")
	}
	req := append([]byte{0x52, byte(handle), byte(handle >> 8)}, []byte("cmd")...)
	if resp := e.Process(req); resp != nil {
		t.Errorf("write command should produce no response, got % x", resp)
	}
}

func TestUnknownOpcodeIsRequestNotSupported(t *testing.T) {
	e := newTestEngine(t, 65)
	resp := e.Process([]byte{0xFF})
	want := []byte{0x01, 0xFF, 0x00, 0x00, ecodeRequestNotSupported}
	if !bytes.Equal(resp, want) {
		t.Errorf("got % x, want % x", resp, want)
	}
}

func TestReadMultipleIsNotSupported(t *testing.T) {
	e := newTestEngine(t, 65)
	resp := e.Process([]byte{0x0E, 0x01, 0x00, 0x02, 0x00})
	if len(resp) != 5 || resp[0] != opError || resp[4] != ecodeRequestNotSupported {
		t.Errorf("got % x, want request_not_supported", resp)
	}
}

func TestOutboundSendsNotificationOnceCCCDEnabled(t *testing.T) {
	e := newTestEngine(t, 65)

	var cccdHandle uint16
	for h := uint16(1); h <= e.table.MaxHandle(); h++ {
		ent, ok := e.table.At(h)
		if ok && ent.Kind == attr.KindCCCD {
			cccdHandle = h
			break
		}
	}
	if cccdHandle == 0 {
		t.Fatalf("expected a CCCD attribute in the table")
	}

	writeReq := append([]byte{0x12, byte(cccdHandle), byte(cccdHandle >> 8)}, 0x01, 0x00)
	if resp := e.Process(writeReq); len(resp) != 1 || resp[0] != opWriteResp {
		t.Fatalf("enabling notify failed: % x", resp)
	}

	e.SetMetrics(metrics.New(prometheus.NewRegistry()))
	e.NotifyQueue().Push(0, attr.KindNotify)

	pdu, ok := e.Outbound()
	if !ok {
		t.Fatalf("expected a queued notification to be ready")
	}
	if pdu[0] != opHandleValueNotify {
		t.Errorf("got opcode %#x, want Handle Value Notification", pdu[0])
	}
}
