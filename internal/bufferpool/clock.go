package bufferpool

import (
	"fmt"
)

// advanceHand moves the clock hand one frame forward, wrapping at the
// pool capacity. The hand is owned state of the pool and is never reset
// between allocations: each scan continues where the previous one
// stopped.
func (p *Pool) advanceHand() {
	p.hand = (p.hand + 1) % FrameID(len(p.descs))
}

// allocFrame runs the clock (second-chance) scan and returns a frame
// ready to receive a new page identity: either an empty frame or a
// victim whose previous identity has been fully evicted (flushed if
// dirty, removed from the index, descriptor cleared). It never returns
// a pinned frame.
//
// The scan visits each frame at most twice per call: once to clear its
// ref bit and once to take it. A revolution that finds no empty frame
// and no victim, and cleared no ref bit along the way, means every
// frame is pinned; that is the only failure.
func (p *Pool) allocFrame() (FrameID, error) {
	start := p.hand
	secondChanceGiven := false

	for {
		d := &p.descs[p.hand]
		switch {
		case !d.valid:
			// Empty frame, take it as is.
			frame := p.hand
			p.advanceHand()
			return frame, nil

		case d.pin > 0:
			// In use, cannot evict.
			p.advanceHand()

		case d.ref:
			// Evictable but recently referenced: second chance.
			d.ref = false
			secondChanceGiven = true
			p.advanceHand()

		default:
			// Valid, unpinned, unreferenced: the victim.
			frame := p.hand
			if err := p.evict(frame); err != nil {
				return 0, err
			}
			p.advanceHand()
			return frame, nil
		}

		if p.hand == start {
			if !secondChanceGiven {
				return 0, ErrPoolExhausted
			}
			// Ref bits were cleared this revolution, so another pass
			// may find a victim.
			secondChanceGiven = false
		}
	}
}

// evict writes the frame's page back if dirty, removes its identity
// from the index and clears its descriptor, in that order.
func (p *Pool) evict(frame FrameID) error {
	d := &p.descs[frame]
	if d.dirty {
		if err := d.file.WritePage(&p.frames[frame]); err != nil {
			return fmt.Errorf("evict page %d of %q: %w", d.pageNo, d.file.Name(), err)
		}
		d.dirty = false
		p.stats.Writebacks++
	}
	delete(p.index, d.key())
	d.clear()
	p.stats.Evictions++
	return nil
}
