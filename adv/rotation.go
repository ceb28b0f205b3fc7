package adv

// Advertising channels, per spec.md §6.
const (
	Channel37 = 37
	Channel38 = 38
	Channel39 = 39
)

var advChannels = [3]int{Channel37, Channel38, Channel39}

// Rotation tracks which of the three advertising channels is used next,
// and the deterministic inter-cycle perturbation described in spec.md
// §4.7: a full cycle visits 37, 38, 39 in order; between cycles the
// advertiser waits advertising_interval + perturbation, where
// perturbation advances by (p + 7) mod 11 each cycle.
type Rotation struct {
	pos         int
	perturbation int
}

// NewRotation returns a rotation starting at channel 37 with zero
// perturbation.
func NewRotation() *Rotation { return &Rotation{} }

// Next returns the channel to use for the upcoming PDU, and whether
// this PDU completes a cycle (i.e. it was channel 39, and the next
// call starts a fresh cycle after the inter-cycle wait).
func (r *Rotation) Next() (channel int, cycleComplete bool) {
	channel = advChannels[r.pos]
	cycleComplete = r.pos == len(advChannels)-1
	r.pos = (r.pos + 1) % len(advChannels)
	if cycleComplete {
		r.perturbation = (r.perturbation + 7) % 11
	}
	return channel, cycleComplete
}

// Perturbation returns the current perturbation value in milliseconds,
// in [0, 10], to be added to the configured advertising interval before
// the next cycle begins.
func (r *Rotation) Perturbation() int { return r.perturbation }

// IntervalFor returns the full wait (in milliseconds) before the next
// advertising cycle, given the configured base interval.
func (r *Rotation) IntervalFor(baseIntervalMS int) int {
	return baseIntervalMS + r.perturbation
}
