package bufferpool

import (
	"fmt"
	"io"
)

// Dump writes a line per frame describing its descriptor state, then a
// count of valid frames. It exists for introspection and tests only.
func (p *Pool) Dump(w io.Writer) {
	valid := 0
	for i := range p.descs {
		d := &p.descs[i]
		owner := "-"
		if d.file != nil {
			owner = d.file.Name()
		}
		fmt.Fprintf(w, "frame %3d: valid=%-5v dirty=%-5v ref=%-5v pin=%d file=%s page=%d\n",
			i, d.valid, d.dirty, d.ref, d.pin, owner, d.pageNo)
		if d.valid {
			valid++
		}
	}
	fmt.Fprintf(w, "valid frames: %d/%d\n", valid, len(p.descs))
}

// ValidFrames counts frames currently holding a committed page.
func (p *Pool) ValidFrames() int {
	n := 0
	for i := range p.descs {
		if p.descs[i].valid {
			n++
		}
	}
	return n
}

// PinnedFrames counts frames with outstanding pins.
func (p *Pool) PinnedFrames() int {
	n := 0
	for i := range p.descs {
		if p.descs[i].pin > 0 {
			n++
		}
	}
	return n
}
