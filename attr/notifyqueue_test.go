package attr

import "testing"

func enabledCCCD(n int) *CCCDStore {
	s := NewCCCDStore(n)
	for i := 0; i < n; i++ {
		s.Slot(i).Set(true, true)
	}
	return s
}

func TestNotifyQueueNoOpWhenCCCDDisabled(t *testing.T) {
	cccd := NewCCCDStore(2) // both disabled
	q := NewNotifyQueue([]int{0, 0}, cccd)
	q.Push(0, KindNotify)
	if _, _, ok := q.PopNextReady(SecurityAttrs{}, false); ok {
		t.Errorf("queuing while CCCD disabled should be a no-op")
	}
}

func TestNotifyQueuePushIsIdempotent(t *testing.T) {
	cccd := enabledCCCD(1)
	q := NewNotifyQueue([]int{0}, cccd)
	q.Push(0, KindNotify)
	q.Push(0, KindNotify)
	if got := q.Len(); got != 1 {
		t.Errorf("Len() after duplicate push = %d, want 1", got)
	}
}

func TestNotifyQueuePriorityOrdering(t *testing.T) {
	cccd := enabledCCCD(3)
	// char 0: low priority, char 1: high priority, char 2: medium.
	q := NewNotifyQueue([]int{1, 10, 5}, cccd)
	q.Push(0, KindNotify)
	q.Push(1, KindNotify)
	q.Push(2, KindNotify)

	idx, _, ok := q.PopNextReady(SecurityAttrs{}, false)
	if !ok || idx != 1 {
		t.Fatalf("first pop: got idx=%d ok=%v, want idx=1", idx, ok)
	}
	idx, _, ok = q.PopNextReady(SecurityAttrs{}, false)
	if !ok || idx != 2 {
		t.Fatalf("second pop: got idx=%d ok=%v, want idx=2", idx, ok)
	}
	idx, _, ok = q.PopNextReady(SecurityAttrs{}, false)
	if !ok || idx != 0 {
		t.Fatalf("third pop: got idx=%d ok=%v, want idx=0", idx, ok)
	}
}

func TestNotifyQueueFIFOWithinSamePriority(t *testing.T) {
	cccd := enabledCCCD(3)
	q := NewNotifyQueue([]int{5, 5, 5}, cccd)
	q.Push(2, KindNotify)
	q.Push(0, KindNotify)
	q.Push(1, KindNotify)

	order := []int{2, 0, 1}
	for _, want := range order {
		idx, _, ok := q.PopNextReady(SecurityAttrs{}, false)
		if !ok || idx != want {
			t.Fatalf("pop: got idx=%d ok=%v, want idx=%d", idx, ok, want)
		}
	}
}

func TestNotifyQueueOnlyOneIndicationInFlight(t *testing.T) {
	cccd := enabledCCCD(2)
	q := NewNotifyQueue([]int{1, 1}, cccd)
	q.Push(0, KindIndicate)
	q.Push(1, KindIndicate)

	idx, kind, ok := q.PopNextReady(SecurityAttrs{}, false)
	if !ok || kind != KindIndicate || idx != 0 {
		t.Fatalf("first indication pop unexpected: idx=%d kind=%v ok=%v", idx, kind, ok)
	}
	if _, _, ok := q.PopNextReady(SecurityAttrs{}, false); ok {
		t.Errorf("a second indication should not be ready while one is in flight")
	}
	q.ConfirmIndication()
	idx, _, ok = q.PopNextReady(SecurityAttrs{}, false)
	if !ok || idx != 1 {
		t.Fatalf("after confirm: got idx=%d ok=%v, want idx=1", idx, ok)
	}
}

func TestNotifyQueueResetClearsStateOnDisconnect(t *testing.T) {
	cccd := enabledCCCD(1)
	q := NewNotifyQueue([]int{1}, cccd)
	q.Push(0, KindIndicate)
	q.PopNextReady(SecurityAttrs{}, false)
	q.Reset()
	if q.IndicationInFlight() {
		t.Errorf("Reset should clear in-flight indication marker")
	}
	if q.Len() != 0 {
		t.Errorf("Reset should drop queued entries")
	}
}
