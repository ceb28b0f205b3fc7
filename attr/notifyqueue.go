package attr

import "github.com/bleperiph/gatt/internal/ring"

// Kind distinguishes an unacknowledged notification from an indication
// that must be confirmed by the peer.
type Kind int

const (
	KindNotify Kind = iota
	KindIndicate
)

func (k Kind) String() string {
	if k == KindIndicate {
		return "indicate"
	}
	return "notify"
}

type pending struct {
	kind     Kind
	queued   bool
	seq      uint64
	priority int
}

// pushEvent is what crosses the SPSC boundary: a request to mark
// charIndex queued for kind. The CCCD gate is checked by Push, on the
// producer side, before the event ever reaches the ring.
type pushEvent struct {
	charIndex int
	kind      Kind
}

// pushRingCapacity bounds how many not-yet-drained Push calls can be
// outstanding before PopNextReady/Len next runs. Coalescing happens at
// drain time, so repeated pushes for the same characteristic each take
// a slot until then. The capacity is fixed and does not depend on the
// number of notifiable/indicatable characteristics.
const pushRingCapacity = 32

// NotifyQueue is the per-connection bounded FIFO of pending outbound
// notifications/indications described in spec.md §4.4. It is
// parameterized, at construction, over exactly the characteristics that
// declare notify or indicate; Push is idempotent and PopNextReady
// returns entries in priority order, breaking ties by insertion order.
//
// Push is safe to call only from the foreground/application goroutine
// (e.g. via att.Engine.NotifyQueue().Push); PopNextReady, Len, IndicationInFlight,
// ConfirmIndication and Reset all run on the link layer's single
// goroutine. Concurrent Push/PopNextReady from those two contexts is the
// supported SPSC pattern (spec.md §5): the handoff between them is the
// lock-free ring below, not a mutex — slots, nextSeq and
// indicationInFlight are touched only by the consumer side, so no lock
// is needed there either.
type NotifyQueue struct {
	slots   []pending
	cccd    *CCCDStore
	nextSeq uint64

	pushed *ring.Buffer[pushEvent]

	indicationInFlight bool
}

// NewNotifyQueue builds a queue over n notifiable/indicatable
// characteristics, each with a priority (higher value = sent first,
// matching spec.md's higher_outgoing_priority/lower_outgoing_priority
// lists collapsed to a single integer per characteristic). cccd is
// consulted by Push to honor "queuing while disabled is a no-op".
func NewNotifyQueue(priorities []int, cccd *CCCDStore) *NotifyQueue {
	slots := make([]pending, len(priorities))
	for i, p := range priorities {
		slots[i].priority = p
	}
	return &NotifyQueue{slots: slots, cccd: cccd, pushed: ring.New[pushEvent](pushRingCapacity)}
}

// Push enqueues a pending notification/indication for characteristic
// index charIndex. It is a no-op if the corresponding CCCD bit is not
// enabled for kind. The event is handed to the consumer side over a
// lock-free ring (spec.md §5: "release on push, acquire on pop"). If
// pushRingCapacity events are already waiting to be drained, the push is
// dropped; Push returns nothing, so the caller is not told of the drop.
func (q *NotifyQueue) Push(charIndex int, kind Kind) {
	slot := q.cccd.Slot(charIndex)
	if kind == KindNotify && !slot.Notify() {
		return
	}
	if kind == KindIndicate && !slot.Indicate() {
		return
	}
	q.pushed.Push(pushEvent{charIndex: charIndex, kind: kind})
}

// drain applies every event sitting in the push ring to slots,
// coalescing a repeated push of the same kind for a characteristic that
// is already queued (spec.md §4.4, §3 invariants). It must only be
// called from the consumer side.
func (q *NotifyQueue) drain() {
	for {
		ev, ok := q.pushed.Pop()
		if !ok {
			return
		}
		s := &q.slots[ev.charIndex]
		if s.queued && s.kind == ev.kind {
			continue // already pending, coalesced
		}
		s.queued = true
		s.kind = ev.kind
		s.seq = q.nextSeq
		q.nextSeq++
	}
}

// PopNextReady returns the highest-priority queued entry, skipping
// indications while an indication is in flight. Ties break by insertion
// order (lowest seq first). It dequeues the entry it returns. The CCCD
// is checked only when an entry is pushed, not here.
//
// Security is a single gate for the whole queue: when requireEncryption
// is true and sec.Encrypted is false, nothing is returned. There is no
// per-characteristic security requirement, and CCCD writes are not
// checked against the characteristic's security settings either.
func (q *NotifyQueue) PopNextReady(sec SecurityAttrs, requireEncryption bool) (charIndex int, kind Kind, ok bool) {
	q.drain()

	if requireEncryption && !sec.Encrypted {
		return 0, 0, false
	}

	best := -1
	for i := range q.slots {
		s := &q.slots[i]
		if !s.queued {
			continue
		}
		if s.kind == KindIndicate && q.indicationInFlight {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		bs := &q.slots[best]
		if s.priority > bs.priority || (s.priority == bs.priority && s.seq < bs.seq) {
			best = i
		}
	}
	if best == -1 {
		return 0, 0, false
	}

	s := &q.slots[best]
	kind = s.kind
	s.queued = false
	if kind == KindIndicate {
		q.indicationInFlight = true
	}
	return best, kind, true
}

// ConfirmIndication clears the in-flight indication marker, called when
// the peer's Handle Value Confirmation (0x1E) arrives. On disconnect the
// marker is cleared by Reset instead.
func (q *NotifyQueue) ConfirmIndication() {
	q.indicationInFlight = false
}

// IndicationInFlight reports whether an indication is currently awaiting
// confirmation.
func (q *NotifyQueue) IndicationInFlight() bool {
	return q.indicationInFlight
}

// Len reports the number of entries currently queued, for metrics.
func (q *NotifyQueue) Len() int {
	q.drain()
	n := 0
	for _, s := range q.slots {
		if s.queued {
			n++
		}
	}
	return n
}

// Reset drops all queued entries and clears the in-flight indication
// marker, as required on disconnect (spec.md §5, "Cancellation": "drops
// the notification queue contents").
func (q *NotifyQueue) Reset() {
	q.drain() // pull in anything still in flight so it is actually dropped
	for i := range q.slots {
		q.slots[i].queued = false
	}
	q.indicationInFlight = false
}
