package bufferpool

import (
	"errors"
	"fmt"

	"github.com/pavodb/pavodb/internal/storage"
)

var (
	// ErrPoolExhausted is returned by Fetch and AllocateNew when every
	// frame is pinned and no victim can be found even after a full
	// ref-bit sweep. The caller must unpin something before retrying.
	ErrPoolExhausted = errors.New("bufferpool: all frames pinned, no frame available")

	// ErrPageNotPinned signals an unbalanced Unpin: the page is resident
	// but its pin count is already zero.
	ErrPageNotPinned = errors.New("bufferpool: page is not pinned")

	// ErrPoolClosed is returned by every operation after Close.
	ErrPoolClosed = errors.New("bufferpool: pool is closed")
)

// PagePinnedError is returned by FlushFile when a page that must be
// flushed still has outstanding pins. It identifies the offending page
// so the caller can find the unbalanced fetch.
type PagePinnedError struct {
	File   string
	PageNo storage.PageNo
	Frame  FrameID
	Pins   int
}

func (e *PagePinnedError) Error() string {
	return fmt.Sprintf("bufferpool: page %d of %q still pinned %d time(s) in frame %d",
		e.PageNo, e.File, e.Pins, e.Frame)
}

// BadFrameError reports a corrupt descriptor: a frame attributed to a
// file while marked invalid. It indicates an index/descriptor
// bookkeeping bug and is never retried.
type BadFrameError struct {
	Frame FrameID
	Valid bool
	Dirty bool
	Ref   bool
}

func (e *BadFrameError) Error() string {
	return fmt.Sprintf("bufferpool: corrupt descriptor for frame %d (valid=%v dirty=%v ref=%v)",
		e.Frame, e.Valid, e.Dirty, e.Ref)
}
