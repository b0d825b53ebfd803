package bufferpool

import (
	"github.com/pavodb/pavodb/internal/storage"
)

// FrameID indexes one slot of the pool, 0..capacity-1.
type FrameID int

// pageKey is the identity of a resident page: which file, which page.
type pageKey struct {
	file   storage.FileID
	pageNo storage.PageNo
}

// frameDesc is the per-frame metadata record. The descriptor table and
// the page-identity index are two views of one fact: an index entry for
// (file, pageNo) exists iff the target frame's descriptor carries the
// same identity with valid set. Every mutation keeps both in step inside
// a single operation.
//
// Invariants: pin == 0 whenever valid is false; dirty implies valid; a
// frame is eviction-eligible iff valid && pin == 0.
type frameDesc struct {
	file   storage.File
	pageNo storage.PageNo
	valid  bool
	dirty  bool
	ref    bool
	pin    int
}

// set stamps the descriptor for a page that was just brought into the
// frame: pinned once, recently referenced, clean.
func (d *frameDesc) set(f storage.File, no storage.PageNo) {
	d.file = f
	d.pageNo = no
	d.valid = true
	d.dirty = false
	d.ref = true
	d.pin = 1
}

// clear returns the descriptor to the empty state so the frame can be
// reused.
func (d *frameDesc) clear() {
	d.file = nil
	d.pageNo = 0
	d.valid = false
	d.dirty = false
	d.ref = false
	d.pin = 0
}

func (d *frameDesc) key() pageKey {
	return pageKey{file: d.file.ID(), pageNo: d.pageNo}
}

// evictable reports whether the clock scan may take this frame.
func (d *frameDesc) evictable() bool {
	return d.valid && d.pin == 0
}
