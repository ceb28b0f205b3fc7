package att

import "github.com/bleperiph/gatt/uuid"

// writer builds an outbound PDU bounded by the negotiated MTU. Fixed
// fields are appended directly; repeated items (Find Information,
// Find By Type Value, Read By Type, Read By Group Type responses all
// emit a list of same-shaped entries) are wrapped in beginItem/commitItem
// so a final entry that would overflow the MTU is dropped rather than
// truncated, matching the teacher's l2capWriter chunk/commit pattern.
type writer struct {
	buf        []byte
	mtu        int
	chunking   bool
	chunkStart int
}

func newWriter(mtu uint16) *writer {
	return &writer{mtu: int(mtu)}
}

func (w *writer) writeByte(b byte)     { w.buf = append(w.buf, b) }
func (w *writer) writeUint16(v uint16) { w.buf = append(w.buf, byte(v), byte(v>>8)) }
func (w *writer) writeUUID(u uuid.UUID) { w.buf = append(w.buf, u.Bytes()...) }
func (w *writer) writeBytes(b []byte)  { w.buf = append(w.buf, b...) }

// beginItem starts a repeated-entry chunk. It panics if called while
// already inside an uncommitted chunk.
func (w *writer) beginItem() {
	if w.chunking {
		panic("att: writer.beginItem called without a matching commitItem")
	}
	w.chunking = true
	w.chunkStart = len(w.buf)
}

// commitItem accepts the chunk written since beginItem if it fits within
// the MTU, otherwise rolls the buffer back to before the chunk. It
// panics if called without an open chunk.
func (w *writer) commitItem() bool {
	if !w.chunking {
		panic("att: writer.commitItem called without a matching beginItem")
	}
	w.chunking = false
	if len(w.buf) > w.mtu {
		w.buf = w.buf[:w.chunkStart]
		return false
	}
	return true
}

func (w *writer) bytes() []byte { return w.buf }

func errorResp(op byte, handle uint16, ecode byte) []byte {
	return []byte{opError, op, byte(handle), byte(handle >> 8), ecode}
}
