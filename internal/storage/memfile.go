package storage

import (
	"fmt"
)

var _ File = (*MemFile)(nil)

// MemFile keeps pages in memory. It obeys the same contract as DiskFile
// and additionally counts physical reads and writes, which the buffer
// pool tests use to assert I/O behavior.
type MemFile struct {
	name     string
	id       FileID
	pageSize int

	pages  map[PageNo][]byte
	freed  map[PageNo]bool
	nextNo PageNo

	Reads  int
	Writes int
}

func NewMemFile(name string, pageSize int) *MemFile {
	if pageSize <= PageHeaderSize {
		pageSize = DefaultPageSize
	}
	return &MemFile{
		name:     name,
		id:       newFileID(),
		pageSize: pageSize,
		pages:    make(map[PageNo][]byte),
		freed:    make(map[PageNo]bool),
		nextNo:   HeaderPageNo + 1,
	}
}

func (mf *MemFile) ReadPage(no PageNo, dst *Page) error {
	if no == HeaderPageNo {
		return ErrInvalidPageNo
	}
	if len(dst.Buf) != mf.pageSize {
		return fmt.Errorf("%w: want %d, got %d", ErrPageSize, mf.pageSize, len(dst.Buf))
	}
	if mf.freed[no] {
		return fmt.Errorf("%w: page %d", ErrPageFreed, no)
	}
	buf, ok := mf.pages[no]
	if !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotFound, no)
	}
	mf.Reads++
	copy(dst.Buf, buf)
	return nil
}

func (mf *MemFile) WritePage(p *Page) error {
	no := p.No()
	if no == HeaderPageNo {
		return ErrInvalidPageNo
	}
	if len(p.Buf) != mf.pageSize {
		return fmt.Errorf("%w: want %d, got %d", ErrPageSize, mf.pageSize, len(p.Buf))
	}
	if mf.freed[no] {
		return fmt.Errorf("%w: page %d", ErrPageFreed, no)
	}
	if _, ok := mf.pages[no]; !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotFound, no)
	}
	mf.Writes++
	buf := make([]byte, mf.pageSize)
	copy(buf, p.Buf)
	mf.pages[no] = buf
	return nil
}

func (mf *MemFile) AllocatePage() (PageNo, error) {
	var no PageNo
	for f := range mf.freed {
		no = f
		break
	}
	if no != 0 {
		delete(mf.freed, no)
	} else {
		no = mf.nextNo
		mf.nextNo++
	}

	fresh, err := NewPage(mf.pageSize, no)
	if err != nil {
		return 0, err
	}
	mf.pages[no] = fresh.Buf
	return no, nil
}

func (mf *MemFile) FreePage(no PageNo) error {
	if no == HeaderPageNo {
		return ErrInvalidPageNo
	}
	if mf.freed[no] {
		return fmt.Errorf("%w: page %d", ErrPageFreed, no)
	}
	if _, ok := mf.pages[no]; !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotFound, no)
	}
	delete(mf.pages, no)
	mf.freed[no] = true
	return nil
}

func (mf *MemFile) ID() FileID    { return mf.id }
func (mf *MemFile) Name() string  { return mf.name }
func (mf *MemFile) PageSize() int { return mf.pageSize }
func (mf *MemFile) Close() error  { return nil }
