package attr

import "github.com/rs/xid"

// ClientID identifies the client that owns a run of queued prepared
// writes. It is a compact, sortable, allocation-free id (rs/xid),
// letting the arena key writes by client identity rather than by
// transport object pointer — see SPEC_FULL.md §6 ("Write Queue (Arena),
// supplement").
type ClientID = xid.ID

// NewClientID mints a fresh client identifier, e.g. when a connection is
// established.
func NewClientID() ClientID { return xid.New() }

// WriteRecord is one queued prepared-write chunk, per spec.md §3/§4.9.
type WriteRecord struct {
	Client ClientID
	Handle uint16
	Offset uint16
	Data   []byte // aliases a sub-slice of the arena's backing buffer
}

// WriteQueue is the arena allocator for queued prepared writes described
// in spec.md §4.9: a shared buffer of fixed size among at most one
// current owning client at a time (allocate fails if another client
// already holds any records), freed in bulk on Execute Write or
// disconnect.
type WriteQueue struct {
	buf     []byte
	used    int
	records []WriteRecord
}

// NewWriteQueue allocates an arena of the given byte size.
func NewWriteQueue(size int) *WriteQueue {
	return &WriteQueue{buf: make([]byte, size)}
}

// Allocate appends a prepared-write chunk owned by client. It reports
// false if there is not enough remaining space, or if the arena is
// currently held by a different client.
func (q *WriteQueue) Allocate(client ClientID, handle uint16, offset uint16, data []byte) bool {
	if len(q.records) > 0 && q.records[0].Client != client {
		return false
	}
	if q.used+len(data) > len(q.buf) {
		return false
	}
	start := q.used
	n := copy(q.buf[start:], data)
	q.used += n
	q.records = append(q.records, WriteRecord{
		Client: client,
		Handle: handle,
		Offset: offset,
		Data:   q.buf[start : start+n],
	})
	return true
}

// Free releases all records belonging to client, reclaiming the arena's
// space. Per the ownership invariant enforced by Allocate, a successful
// sequence of allocations can only ever be owned by a single client, so
// Free(client) when client matches the current owner empties the arena
// entirely.
func (q *WriteQueue) Free(client ClientID) {
	if len(q.records) == 0 || q.records[0].Client != client {
		return
	}
	q.records = nil
	q.used = 0
}

// Owner returns the client currently holding queued records, and
// reports false if the arena is empty.
func (q *WriteQueue) Owner() (ClientID, bool) {
	if len(q.records) == 0 {
		return ClientID{}, false
	}
	return q.records[0].Client, true
}

// Records returns the queued records in FIFO (insertion) order, as
// required to apply Execute Write chunks "in order" (spec.md §4.3).
// The returned slice aliases internal storage; callers must not retain
// it across a subsequent Allocate/Free.
func (q *WriteQueue) Records() []WriteRecord { return q.records }

// Cap returns the arena's total byte capacity.
func (q *WriteQueue) Cap() int { return len(q.buf) }

// Used returns the number of bytes currently occupied.
func (q *WriteQueue) Used() int { return q.used }
