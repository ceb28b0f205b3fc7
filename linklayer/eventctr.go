package linklayer

// eventCounterBits is the width of the connection event counter, per
// the Bluetooth core spec: a 16-bit value that wraps.
const eventCounterBits = 16

// Distance computes the signed distance from b to a on a wrapping
// eventCounterBits-wide counter: how many ticks after b does a fall,
// taking the shorter way around. distance(a, b) = -distance(b, a), and
// |distance(a, b)| <= 2^(N-1).
func Distance(a, b uint16) int {
	d := int(int16(a - b))
	return d
}

// InstantHasPassed reports whether the connection event counter current
// is at or past instant, used to decide whether an LL_CHANNEL_MAP_IND
// (or similar Instant-gated control PDU) can still be honored per
// spec.md §4.7: missing the instant window means the update arrived
// too late and the connection must be dropped.
func InstantHasPassed(current, instant uint16) bool {
	return Distance(current, instant) >= 0
}
