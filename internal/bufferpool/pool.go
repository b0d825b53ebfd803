package bufferpool

import (
	"errors"
	"fmt"

	"github.com/pavodb/pavodb/internal/storage"
)

// DefaultCapacity is the number of frames a pool gets when the caller
// does not say otherwise.
var DefaultCapacity = 128

// Stats counts what the pool has done since construction.
type Stats struct {
	Hits       int
	Misses     int
	Evictions  int
	Writebacks int
	Flushes    int
}

// Pool is the buffer-pool manager: a fixed-size array of page frames, a
// descriptor table tracking what occupies each frame, a page-identity
// index giving O(1) lookup of resident pages, and a clock hand driving
// eviction. All access to pages on disk goes through it.
//
// A Pool is not safe for concurrent use. Every operation assumes one
// logical thread of control; callers that need concurrency must wrap
// the pool in their own mutual exclusion.
//
// Pages returned by Fetch and AllocateNew alias the pool's own frame
// memory. Such a reference is only good while the caller holds the pin
// that produced it; after Unpin the frame may be evicted and reused at
// any time.
type Pool struct {
	frames []storage.Page
	descs  []frameDesc
	index  map[pageKey]FrameID
	hand   FrameID

	pageSize int
	stats    Stats
	closed   bool
}

// New builds a pool with the given frame count and page size.
// Non-positive arguments fall back to DefaultCapacity and
// storage.DefaultPageSize.
func New(capacity, pageSize int) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if pageSize <= storage.PageHeaderSize {
		pageSize = storage.DefaultPageSize
	}

	p := &Pool{
		frames:   make([]storage.Page, capacity),
		descs:    make([]frameDesc, capacity),
		index:    make(map[pageKey]FrameID, capacity),
		hand:     0,
		pageSize: pageSize,
	}
	for i := range p.frames {
		p.frames[i].Buf = make([]byte, pageSize)
	}
	return p
}

// Capacity returns the number of frames.
func (p *Pool) Capacity() int { return len(p.frames) }

// PageSize returns the page size every frame was sized for.
func (p *Pool) PageSize() int { return p.pageSize }

// Stats returns a copy of the pool's counters.
func (p *Pool) Stats() Stats { return p.stats }

// Fetch returns the page (f, no), pinned once more. A resident page is
// returned directly; otherwise a frame is obtained from the clock scan,
// the page is read from f, and the identity index and descriptor are
// updated, in that order, so a failed read leaves no dangling index
// entry.
func (p *Pool) Fetch(f storage.File, no storage.PageNo) (*storage.Page, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}

	key := pageKey{file: f.ID(), pageNo: no}
	if frame, ok := p.index[key]; ok {
		d := &p.descs[frame]
		d.ref = true
		d.pin++
		p.stats.Hits++
		return &p.frames[frame], nil
	}

	frame, err := p.allocFrame()
	if err != nil {
		return nil, fmt.Errorf("fetch page %d of %q: %w", no, f.Name(), err)
	}
	if err := f.ReadPage(no, &p.frames[frame]); err != nil {
		// The frame stays empty; nothing was indexed yet.
		return nil, fmt.Errorf("fetch page %d of %q: %w", no, f.Name(), err)
	}

	p.index[key] = frame
	p.descs[frame].set(f, no)
	p.stats.Misses++
	return &p.frames[frame], nil
}

// Unpin releases one pin on (f, no) and, if dirty is true, marks the
// frame dirty. The dirty bit is sticky: only a flush or an eviction
// write-back clears it. Unpinning a page that is no longer resident is
// a no-op; unpinning a resident page whose pin count is already zero is
// a caller bug and returns ErrPageNotPinned.
func (p *Pool) Unpin(f storage.File, no storage.PageNo, dirty bool) error {
	if p.closed {
		return ErrPoolClosed
	}

	frame, ok := p.index[pageKey{file: f.ID(), pageNo: no}]
	if !ok {
		return nil
	}

	d := &p.descs[frame]
	if d.pin == 0 {
		return fmt.Errorf("unpin page %d of %q (frame %d): %w", no, f.Name(), frame, ErrPageNotPinned)
	}
	d.pin--
	if dirty {
		d.dirty = true
	}
	return nil
}

// AllocateNew asks f for a fresh page identity, places a zeroed page
// for it in a frame, and returns the new page number together with the
// page, pinned once. The caller must Unpin it when done.
func (p *Pool) AllocateNew(f storage.File) (storage.PageNo, *storage.Page, error) {
	if p.closed {
		return 0, nil, ErrPoolClosed
	}

	no, err := f.AllocatePage()
	if err != nil {
		return 0, nil, fmt.Errorf("allocate page in %q: %w", f.Name(), err)
	}
	frame, err := p.allocFrame()
	if err != nil {
		return 0, nil, fmt.Errorf("allocate page %d of %q: %w", no, f.Name(), err)
	}

	// Mirror the fresh zeroed page the file just wrote.
	p.frames[frame].Reset(no)

	p.index[pageKey{file: f.ID(), pageNo: no}] = frame
	p.descs[frame].set(f, no)
	return no, &p.frames[frame], nil
}

// Dispose drops page no from the pool, discarding its content without
// any write-back, then tells f to free the physical page. The pool side
// is idempotent: a page that is not resident goes straight to f.
func (p *Pool) Dispose(f storage.File, no storage.PageNo) error {
	if p.closed {
		return ErrPoolClosed
	}

	key := pageKey{file: f.ID(), pageNo: no}
	if frame, ok := p.index[key]; ok {
		delete(p.index, key)
		p.descs[frame].clear()
	}
	if err := f.FreePage(no); err != nil {
		return fmt.Errorf("dispose page %d of %q: %w", no, f.Name(), err)
	}
	return nil
}

// FlushFile writes back and evicts every page of f, scanning frames in
// ascending order. A pinned page stops the scan with a PagePinnedError,
// leaving later frames for f untouched; a frame attributed to f while
// marked invalid stops it with a BadFrameError.
func (p *Pool) FlushFile(f storage.File) error {
	if p.closed {
		return ErrPoolClosed
	}

	id := f.ID()
	for i := range p.descs {
		d := &p.descs[i]
		if d.file == nil || d.file.ID() != id {
			continue
		}
		if d.pin > 0 {
			return &PagePinnedError{
				File:   f.Name(),
				PageNo: d.pageNo,
				Frame:  FrameID(i),
				Pins:   d.pin,
			}
		}
		if !d.valid {
			return &BadFrameError{
				Frame: FrameID(i),
				Valid: d.valid,
				Dirty: d.dirty,
				Ref:   d.ref,
			}
		}
		if d.dirty {
			if err := d.file.WritePage(&p.frames[i]); err != nil {
				return fmt.Errorf("flush page %d of %q: %w", d.pageNo, f.Name(), err)
			}
			d.dirty = false
			p.stats.Flushes++
		}
		delete(p.index, d.key())
		d.clear()
	}
	return nil
}

// FlushAll flushes every file that has pages resident in the pool. It
// stops at the first file that fails.
func (p *Pool) FlushAll() error {
	if p.closed {
		return ErrPoolClosed
	}

	// Collect distinct owners in ascending frame order so behavior is
	// deterministic.
	var files []storage.File
	seen := make(map[storage.FileID]bool)
	for i := range p.descs {
		d := &p.descs[i]
		if d.file == nil || seen[d.file.ID()] {
			continue
		}
		seen[d.file.ID()] = true
		files = append(files, d.file)
	}

	for _, f := range files {
		if err := p.FlushFile(f); err != nil {
			return err
		}
	}
	return nil
}

// Close writes back every dirty frame regardless of pin state and
// releases the pool. Write errors do not stop the sweep; all of them
// are joined into the returned error. The pool is unusable afterwards.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}

	var errs []error
	for i := range p.descs {
		d := &p.descs[i]
		if d.valid && d.dirty {
			if err := d.file.WritePage(&p.frames[i]); err != nil {
				errs = append(errs, fmt.Errorf("close: flush page %d of %q: %w", d.pageNo, d.file.Name(), err))
				continue
			}
			d.dirty = false
			p.stats.Writebacks++
		}
	}

	p.frames = nil
	p.descs = nil
	p.index = nil
	p.closed = true
	return errors.Join(errs...)
}
