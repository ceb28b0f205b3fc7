// Package linklayer implements the link-layer state machine (spec.md
// §4.7): advertising, connection establishment, per-event channel
// hopping, LL control PDU handling, and the radio driver interface it
// consumes (spec.md §6).
package linklayer

// NumDataChannels is the number of BLE data channel indices, 0-36.
const NumDataChannels = 37

// ChannelMap holds the active data-channel set and the hop increment
// used to derive the next channel from the last one used, per spec.md
// §4.8.
type ChannelMap struct {
	used []int // sorted ascending channel indices in [0, NumDataChannels)
	hop  int
}

// NewChannelMap builds a channel map from a set of used channel
// indices (0-36) and a hop increment in [5, 16]. Indices are sorted
// and deduplicated.
func NewChannelMap(usedChannels []int, hop int) *ChannelMap {
	present := make(map[int]bool, len(usedChannels))
	for _, c := range usedChannels {
		if c >= 0 && c < NumDataChannels {
			present[c] = true
		}
	}
	used := make([]int, 0, len(present))
	for c := 0; c < NumDataChannels; c++ {
		if present[c] {
			used = append(used, c)
		}
	}
	return &ChannelMap{used: used, hop: hop}
}

// Hop returns the configured hop increment.
func (m *ChannelMap) Hop() int { return m.hop }

// UsedChannels returns the sorted active channel indices.
func (m *ChannelMap) UsedChannels() []int { return m.used }

// IsUsed reports whether channel is in the active set.
func (m *ChannelMap) IsUsed(channel int) bool {
	for _, c := range m.used {
		if c == channel {
			return true
		}
	}
	return false
}

// NextChannel computes the channel for the event following one on
// lastUsed, per spec.md §4.8: `(lastUsed + hop) mod 37` if that
// channel is itself in the map; otherwise it is remapped to
// `used[(lastUsed + hop) mod 37 mod len(used)]`.
func (m *ChannelMap) NextChannel(lastUsed int) int {
	unmapped := (lastUsed + m.hop) % NumDataChannels
	if m.IsUsed(unmapped) {
		return unmapped
	}
	pos := unmapped % len(m.used)
	return m.used[pos]
}
