package att

import (
	"github.com/bleperiph/gatt/attr"
	"github.com/bleperiph/gatt/internal/metrics"
	"github.com/bleperiph/gatt/uuid"
)

const minMTU = 23

// Engine is the per-connection ATT protocol state machine described in
// spec.md §4.3: request/response dispatch, MTU negotiation, and the
// find/read/write opcode family, layered over a shared, immutable
// attr.Table and this connection's CCCD store / write-queue arena.
type Engine struct {
	table *attr.Table

	serverMTU uint16
	clientMTU uint16

	cccd     *attr.CCCDStore
	nq       *attr.NotifyQueue
	wq       *attr.WriteQueue
	clientID attr.ClientID
	security attr.SecurityAttrs

	metrics *metrics.Collectors
}

// NewEngine constructs an Engine for one connection. writeQueueSize is
// the byte capacity of that connection's prepare-write arena.
func NewEngine(table *attr.Table, serverMTU uint16, writeQueueSize int) *Engine {
	if serverMTU < minMTU {
		serverMTU = minMTU
	}
	cccd := attr.NewCCCDStore(table.NotifiableCount())
	return &Engine{
		table:     table,
		serverMTU: serverMTU,
		clientMTU: minMTU,
		cccd:      cccd,
		nq:        attr.NewNotifyQueue(table.NotifiablePriorities(), cccd),
		wq:        attr.NewWriteQueue(writeQueueSize),
		clientID:  attr.NewClientID(),
	}
}

// CCCD returns this connection's CCCD store, for persistence across
// reconnection.
func (e *Engine) CCCD() *attr.CCCDStore { return e.cccd }

// NotifyQueue returns this connection's notification/indication queue,
// for application code to Push into after mutating a characteristic's
// value.
func (e *Engine) NotifyQueue() *attr.NotifyQueue { return e.nq }

// SetSecurity updates the connection's security attributes, e.g. after
// the Security Manager completes pairing.
func (e *Engine) SetSecurity(s attr.SecurityAttrs) { e.security = s }

// HasPending reports whether a notification or indication is still
// queued, for the link layer's More Data PDU header bit.
func (e *Engine) HasPending() bool { return e.nq.Len() > 0 }

// SetMetrics installs the Prometheus collectors this connection reports
// notification-queue depth and send counts to. A nil value (the
// default) disables reporting entirely.
func (e *Engine) SetMetrics(c *metrics.Collectors) { e.metrics = c }

// NegotiatedMTU returns min(server_mtu, client_mtu).
func (e *Engine) NegotiatedMTU() uint16 {
	if e.clientMTU < e.serverMTU {
		return e.clientMTU
	}
	return e.serverMTU
}

// Process handles one received ATT request PDU and returns the PDU to
// send back, or nil if none is due (Write Command, Handle Value
// Confirmation). It never panics on malformed input.
func (e *Engine) Process(req []byte) []byte {
	if len(req) == 0 {
		return nil
	}
	op, body := req[0], req[1:]

	switch op {
	case opMTUReq:
		return e.handleMTU(body)
	case opFindInfoReq:
		return e.handleFindInfo(body)
	case opFindByTypeValueReq:
		return e.handleFindByTypeValue(body)
	case opReadByTypeReq:
		return e.handleReadByType(body)
	case opReadReq:
		return e.handleRead(body, false)
	case opReadBlobReq:
		return e.handleRead(body, true)
	case opReadByGroupReq:
		return e.handleReadByGroupType(body)
	case opWriteReq:
		return e.handleWrite(body, true)
	case opWriteCmd:
		e.handleWrite(body, false)
		return nil
	case opPrepareWriteReq:
		return e.handlePrepareWrite(body)
	case opExecuteWriteReq:
		return e.handleExecuteWrite(body)
	case opHandleValueConfirm:
		e.nq.ConfirmIndication()
		return nil
	case opReadMultiReq:
		// Not implemented: spec.md §9 supplement decision — Read
		// Multiple is rare in practice and every profile this stack
		// targets reads characteristics individually.
		return errorResp(op, 0, ecodeRequestNotSupported)
	default:
		return errorResp(op, 0, ecodeRequestNotSupported)
	}
}

func readHandleRange(b []byte) (start, end uint16, ok bool) {
	if len(b) < 4 {
		return 0, 0, false
	}
	return le16(b), le16(b[2:]), true
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func (e *Engine) validateRange(op byte, start, end uint16) []byte {
	if start == 0 {
		return errorResp(op, start, ecodeInvalidHandle)
	}
	if start > end {
		return errorResp(op, start, ecodeInvalidHandle)
	}
	return nil
}

func (e *Engine) handleMTU(b []byte) []byte {
	if len(b) < 2 {
		return errorResp(opMTUReq, 0, ecodeInvalidPDU)
	}
	requested := le16(b)
	clientMTU := requested
	if clientMTU < minMTU {
		clientMTU = minMTU
	}
	if clientMTU > e.serverMTU {
		clientMTU = e.serverMTU
	}
	e.clientMTU = clientMTU
	return []byte{opMTUResp, byte(e.serverMTU), byte(e.serverMTU >> 8)}
}

func (e *Engine) handleFindInfo(b []byte) []byte {
	start, end, ok := readHandleRange(b)
	if !ok {
		return errorResp(opFindInfoReq, 0, ecodeInvalidPDU)
	}
	if errResp := e.validateRange(opFindInfoReq, start, end); errResp != nil {
		return errResp
	}

	w := newWriter(e.NegotiatedMTU())
	w.writeByte(opFindInfoResp)
	format := 0
	wrote := false

	for _, ent := range e.table.Subrange(start, end) {
		u, ok := attributeTypeUUID(ent)
		if !ok {
			continue
		}
		entryFormat := finding16Format
		if u.Len() == 16 {
			entryFormat = finding128Format
		}
		if format == 0 {
			format = entryFormat
			w.writeByte(byte(format))
		} else if entryFormat != format {
			break
		}

		w.beginItem()
		w.writeUint16(ent.Handle)
		w.writeUUID(u)
		if !w.commitItem() {
			break
		}
		wrote = true
	}

	if !wrote {
		return errorResp(opFindInfoReq, start, ecodeAttrNotFound)
	}
	return w.bytes()
}

// attributeTypeUUID returns the ATT attribute-type UUID for ent: for
// service/characteristic declarations this is the group/declaration
// type (0x2800/0x2801/0x2803); for values/CCCDs/descriptors it is the
// entry's own UUID.
func attributeTypeUUID(ent attr.Entry) (uuid.UUID, bool) {
	switch ent.Kind {
	case attr.KindService:
		return attr.UUIDPrimaryServiceType, true
	case attr.KindSecondaryService:
		return attr.UUIDSecondaryServiceType, true
	case attr.KindCharacteristicDecl:
		return attr.UUIDCharacteristicType, true
	case attr.KindCharacteristicValue, attr.KindCCCD, attr.KindUserDescription, attr.KindUserDescriptor:
		return ent.UUID, true
	default:
		return uuid.UUID{}, false
	}
}

func (e *Engine) handleFindByTypeValue(b []byte) []byte {
	if len(b) < 6 {
		return errorResp(opFindByTypeValueReq, 0, ecodeInvalidPDU)
	}
	start, end := le16(b), le16(b[2:])
	if errResp := e.validateRange(opFindByTypeValueReq, start, end); errResp != nil {
		return errResp
	}
	attrType, err := uuid.Parse(b[4:6])
	if err != nil {
		return errorResp(opFindByTypeValueReq, start, ecodeInvalidPDU)
	}
	value := b[6:]

	// Only the primary-service group type is supported for discovery by
	// value, matching spec.md §4.3's Read By Group Type restriction.
	if !attrType.Equal(attr.UUIDPrimaryServiceType) {
		return errorResp(opFindByTypeValueReq, start, ecodeAttrNotFound)
	}

	w := newWriter(e.NegotiatedMTU())
	w.writeByte(opFindByTypeValueResp)
	wrote := false

	for _, ent := range e.table.Subrange(start, end) {
		if ent.Kind != attr.KindService || !bytesEqual(ent.UUID.Bytes(), value) {
			continue
		}
		w.beginItem()
		w.writeUint16(ent.Handle)
		w.writeUint16(ent.GroupEnd)
		if !w.commitItem() {
			break
		}
		wrote = true
	}

	if !wrote {
		return errorResp(opFindByTypeValueReq, start, ecodeAttrNotFound)
	}
	return w.bytes()
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (e *Engine) handleReadByType(b []byte) []byte {
	if len(b) < 6 {
		return errorResp(opReadByTypeReq, 0, ecodeInvalidPDU)
	}
	start, end := le16(b), le16(b[2:])
	if errResp := e.validateRange(opReadByTypeReq, start, end); errResp != nil {
		return errResp
	}
	reqType, err := uuid.Parse(b[4:])
	if err != nil {
		return errorResp(opReadByTypeReq, start, ecodeInvalidPDU)
	}

	w := newWriter(e.NegotiatedMTU())
	w.writeByte(opReadByTypeResp)
	entryLen := -1
	wrote := false

	for _, ent := range e.table.Subrange(start, end) {
		if ent.Kind != attr.KindCharacteristicValue && ent.Kind != attr.KindUserDescriptor {
			continue
		}
		if !ent.UUID.Equal(reqType) {
			continue
		}
		if ent.Kind == attr.KindCharacteristicValue && !ent.Properties.Has(attr.PropRead) {
			return errorResp(opReadByTypeReq, ent.Handle, ecodeReadNotPermitted)
		}

		out := make([]byte, e.NegotiatedMTU())
		args := &attr.AccessArgs{Type: attr.AccessRead, Handle: ent.Handle, Output: out, Security: e.security}
		res := e.table.Access(e.cccd, args)
		if res != attr.ResultSuccess {
			return errorResp(opReadByTypeReq, ent.Handle, errorCodeFor(res))
		}
		value := out[:args.OutputLen]

		if entryLen == -1 {
			entryLen = 2 + len(value)
			w.writeByte(byte(entryLen))
		}
		if 2+len(value) != entryLen {
			break
		}
		w.beginItem()
		w.writeUint16(ent.Handle)
		w.writeBytes(value)
		if !w.commitItem() {
			break
		}
		wrote = true
	}

	if !wrote {
		return errorResp(opReadByTypeReq, start, ecodeAttrNotFound)
	}
	return w.bytes()
}

func (e *Engine) handleRead(b []byte, blob bool) []byte {
	op := opReadReq
	if blob {
		op = opReadBlobReq
	}
	minLen := 2
	if blob {
		minLen = 4
	}
	if len(b) < minLen {
		return errorResp(op, 0, ecodeInvalidPDU)
	}
	handle := le16(b)
	var offset uint16
	if blob {
		offset = le16(b[2:])
	}
	if handle == 0 {
		return errorResp(op, 0, ecodeInvalidHandle)
	}
	if _, ok := e.table.At(handle); !ok {
		return errorResp(op, handle, ecodeInvalidHandle)
	}

	respOp := byte(opReadResp)
	if blob {
		respOp = opReadBlobResp
	}

	maxOut := int(e.NegotiatedMTU()) - 1
	if maxOut < 0 {
		maxOut = 0
	}
	out := make([]byte, maxOut)
	args := &attr.AccessArgs{Type: attr.AccessRead, Handle: handle, Offset: offset, Output: out, Security: e.security}
	res := e.table.Access(e.cccd, args)
	if res != attr.ResultSuccess {
		return errorResp(op, handle, errorCodeFor(res))
	}

	w := newWriter(e.NegotiatedMTU())
	w.writeByte(respOp)
	w.writeBytes(out[:args.OutputLen])
	return w.bytes()
}

func (e *Engine) handleReadByGroupType(b []byte) []byte {
	if len(b) < 6 {
		return errorResp(opReadByGroupReq, 0, ecodeInvalidPDU)
	}
	start, end := le16(b), le16(b[2:])
	if errResp := e.validateRange(opReadByGroupReq, start, end); errResp != nil {
		return errResp
	}
	groupType, err := uuid.Parse(b[4:])
	if err != nil {
		return errorResp(opReadByGroupReq, start, ecodeInvalidPDU)
	}

	var wantKind attr.EntryKind
	switch {
	case groupType.Equal(attr.UUIDPrimaryServiceType):
		wantKind = attr.KindService
	case groupType.Equal(attr.UUIDSecondaryServiceType):
		wantKind = attr.KindSecondaryService
	default:
		return errorResp(opReadByGroupReq, start, ecodeUnsupportedGroupType)
	}

	w := newWriter(e.NegotiatedMTU())
	w.writeByte(opReadByGroupResp)
	entryLen := -1
	wrote := false

	for _, ent := range e.table.Subrange(start, end) {
		if ent.Kind != wantKind {
			continue
		}
		if entryLen == -1 {
			entryLen = 4 + ent.UUID.Len()
			w.writeByte(byte(entryLen))
		}
		if 4+ent.UUID.Len() != entryLen {
			break
		}
		w.beginItem()
		w.writeUint16(ent.Handle)
		w.writeUint16(ent.GroupEnd)
		w.writeUUID(ent.UUID)
		if !w.commitItem() {
			break
		}
		wrote = true
	}

	if !wrote {
		return errorResp(opReadByGroupReq, start, ecodeAttrNotFound)
	}
	return w.bytes()
}

func (e *Engine) handleWrite(b []byte, withResponse bool) []byte {
	op := byte(opWriteCmd)
	if withResponse {
		op = opWriteReq
	}
	if len(b) < 2 {
		if withResponse {
			return errorResp(op, 0, ecodeInvalidPDU)
		}
		return nil
	}
	handle := le16(b)
	data := b[2:]

	if handle == 0 {
		if withResponse {
			return errorResp(op, 0, ecodeInvalidHandle)
		}
		return nil
	}
	if _, ok := e.table.At(handle); !ok {
		if withResponse {
			return errorResp(op, handle, ecodeInvalidHandle)
		}
		return nil
	}

	args := &attr.AccessArgs{Type: attr.AccessWrite, Handle: handle, Input: data, Security: e.security}
	res := e.table.Access(e.cccd, args)
	if !withResponse {
		return nil
	}
	if res != attr.ResultSuccess {
		return errorResp(op, handle, errorCodeFor(res))
	}
	return []byte{opWriteResp}
}

func (e *Engine) handlePrepareWrite(b []byte) []byte {
	if len(b) < 4 {
		return errorResp(opPrepareWriteReq, 0, ecodeInvalidPDU)
	}
	handle := le16(b)
	offset := le16(b[2:])
	data := b[4:]

	if handle == 0 {
		return errorResp(opPrepareWriteReq, 0, ecodeInvalidHandle)
	}
	if _, ok := e.table.At(handle); !ok {
		return errorResp(opPrepareWriteReq, handle, ecodeInvalidHandle)
	}
	if !e.wq.Allocate(e.clientID, handle, offset, data) {
		return errorResp(opPrepareWriteReq, handle, 0x09) // prepare_queue_full
	}

	w := newWriter(e.NegotiatedMTU())
	w.writeByte(opPrepareWriteResp)
	w.writeUint16(handle)
	w.writeUint16(offset)
	w.writeBytes(data)
	return w.bytes()
}

func (e *Engine) handleExecuteWrite(b []byte) []byte {
	if len(b) < 1 {
		return errorResp(opExecuteWriteReq, 0, ecodeInvalidPDU)
	}
	flush := b[0] != 0
	records := e.wq.Records()

	if !flush {
		e.wq.Free(e.clientID)
		return []byte{opExecuteWriteResp}
	}

	// Two-phase commit per spec.md §4.3: validate every chunk against a
	// prepare-write access before committing any of them.
	for _, rec := range records {
		args := &attr.AccessArgs{Type: attr.AccessPrepareWrite, Handle: rec.Handle, Input: rec.Data, Offset: rec.Offset, Security: e.security}
		if res := e.table.Access(e.cccd, args); res != attr.ResultSuccess {
			e.wq.Free(e.clientID)
			return errorResp(opExecuteWriteReq, rec.Handle, errorCodeFor(res))
		}
	}
	for _, rec := range records {
		args := &attr.AccessArgs{Type: attr.AccessWrite, Handle: rec.Handle, Input: rec.Data, Offset: rec.Offset, Security: e.security}
		e.table.Access(e.cccd, args)
	}
	e.wq.Free(e.clientID)
	return []byte{opExecuteWriteResp}
}

// Outbound drains this connection's NotifyQueue for the next ready
// notification/indication and builds its PDU, or reports ok=false if
// nothing is ready to send. It is the ATT-layer half of the
// "output(out_buf)" poll contract in spec.md §4.2; the link layer calls
// it once per connection event.
func (e *Engine) Outbound() (pdu []byte, ok bool) {
	idx, kind, ready := e.nq.PopNextReady(e.security, false)
	if !ready {
		return nil, false
	}

	maxOut := int(e.NegotiatedMTU()) - 3
	if maxOut < 0 {
		maxOut = 0
	}
	value := make([]byte, maxOut)
	n, res := e.table.ReadNotifiableValue(idx, value)
	if res != attr.ResultSuccess {
		return nil, false
	}

	w := newWriter(e.NegotiatedMTU())
	if kind == attr.KindIndicate {
		w.writeByte(opHandleValueInd)
	} else {
		w.writeByte(opHandleValueNotify)
	}
	w.writeUint16(e.table.CharacteristicValueHandle(idx))
	w.writeBytes(value[:n])

	e.metrics.IncNotificationsSent()
	e.metrics.SetQueueDepth(e.nq.Len())
	return w.bytes(), true
}
