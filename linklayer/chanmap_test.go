package linklayer

import "testing"

func TestNextChannelDirectWhenInMap(t *testing.T) {
	m := NewChannelMap([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5)
	// lastUsed=0, hop=5 -> unmapped=5, which is in the map.
	if got := m.NextChannel(0); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestNextChannelRemapsWhenUnused(t *testing.T) {
	// Only even channels used; hop=1 from channel 0 lands on 1 (unused).
	used := []int{0, 2, 4, 6, 8, 10, 12}
	m := NewChannelMap(used, 1)
	unmapped := (0 + 1) % NumDataChannels // 1, not used
	pos := unmapped % len(used)
	want := used[pos]
	if got := m.NextChannel(0); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestUsedChannelsSortedAndDeduplicated(t *testing.T) {
	m := NewChannelMap([]int{5, 1, 5, 3}, 7)
	want := []int{1, 3, 5}
	got := m.UsedChannels()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestIsUsed(t *testing.T) {
	m := NewChannelMap([]int{2, 4, 6}, 5)
	if !m.IsUsed(4) {
		t.Errorf("expected channel 4 to be used")
	}
	if m.IsUsed(5) {
		t.Errorf("expected channel 5 to be unused")
	}
}
