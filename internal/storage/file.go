package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"
)

// File is the on-disk page file contract the buffer pool works against.
// Page numbers are unique within a file; FileID values are unique within
// the process so (FileID, PageNo) identifies a page globally.
type File interface {
	// ReadPage reads page no into dst. dst.Buf must be exactly PageSize
	// bytes long.
	ReadPage(no PageNo, dst *Page) error
	// WritePage writes p back to the slot named by its embedded page
	// number.
	WritePage(p *Page) error
	// AllocatePage extends the file (or reclaims a freed slot) and
	// returns the number of a fresh zeroed page.
	AllocatePage() (PageNo, error)
	// FreePage releases page no for later reuse. Freeing a page twice is
	// an error.
	FreePage(no PageNo) error

	ID() FileID
	Name() string
	PageSize() int
	Close() error
}

var nextFileID atomic.Uint64

func newFileID() FileID {
	return FileID(nextFileID.Add(1))
}

const diskFileMagic uint32 = 0x4F564150 // "PAVO"

// file header layout, stored in page 0:
//
//	[0:4]  magic
//	[4:8]  page size
//	[8:12] page count (header page included)
//	[12:16] head of the free-page list, 0 if empty
const headerSize = 16

var _ File = (*DiskFile)(nil)

// DiskFile stores fixed-size pages in a single OS file. Page 0 is the
// file header; freed pages are chained into an on-disk free list and
// reused by AllocatePage before the file grows.
type DiskFile struct {
	f        *os.File
	name     string
	id       FileID
	pageSize int

	pageCount uint32
	freeHead  PageNo
}

// OpenDiskFile opens or creates a page file. A new file gets a header
// written immediately; an existing file must have been created with the
// same page size.
func OpenDiskFile(path string, pageSize int) (*DiskFile, error) {
	if pageSize <= PageHeaderSize {
		return nil, fmt.Errorf("storage: page size %d too small", pageSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
	if err != nil {
		return nil, fmt.Errorf("open page file: %w", err)
	}

	df := &DiskFile{
		f:        f,
		name:     path,
		id:       newFileID(),
		pageSize: pageSize,
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat page file: %w", err)
	}

	if info.Size() == 0 {
		df.pageCount = 1 // header page
		df.freeHead = 0
		if err := df.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
		return df, nil
	}

	if err := df.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return df, nil
}

func (df *DiskFile) writeHeader() error {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], diskFileMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(df.pageSize))
	binary.LittleEndian.PutUint32(hdr[8:12], df.pageCount)
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(df.freeHead))
	if _, err := df.f.WriteAt(hdr[:], 0); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}
	return nil
}

func (df *DiskFile) readHeader() error {
	var hdr [headerSize]byte
	if _, err := df.f.ReadAt(hdr[:], 0); err != nil {
		return fmt.Errorf("read file header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != diskFileMagic {
		return ErrBadHeader
	}
	if int(binary.LittleEndian.Uint32(hdr[4:8])) != df.pageSize {
		return fmt.Errorf("%w: file has page size %d, opened with %d",
			ErrBadHeader, binary.LittleEndian.Uint32(hdr[4:8]), df.pageSize)
	}
	df.pageCount = binary.LittleEndian.Uint32(hdr[8:12])
	df.freeHead = PageNo(binary.LittleEndian.Uint32(hdr[12:16]))
	return nil
}

func (df *DiskFile) offset(no PageNo) int64 {
	return int64(no) * int64(df.pageSize)
}

func (df *DiskFile) checkNo(no PageNo) error {
	if no == HeaderPageNo {
		return ErrInvalidPageNo
	}
	if uint32(no) >= df.pageCount {
		return fmt.Errorf("%w: page %d of %d", ErrPageNotFound, no, df.pageCount)
	}
	return nil
}

func (df *DiskFile) ReadPage(no PageNo, dst *Page) error {
	if df.f == nil {
		return ErrFileClosed
	}
	if err := df.checkNo(no); err != nil {
		return err
	}
	if len(dst.Buf) != df.pageSize {
		return fmt.Errorf("%w: want %d, got %d", ErrPageSize, df.pageSize, len(dst.Buf))
	}

	if _, err := df.f.ReadAt(dst.Buf, df.offset(no)); err != nil {
		return fmt.Errorf("read page %d: %w", no, err)
	}
	if dst.No() != no {
		return fmt.Errorf("%w: page %d has header number %d", ErrBadHeader, no, dst.No())
	}
	if !dst.InUse() {
		return fmt.Errorf("%w: page %d", ErrPageFreed, no)
	}
	return nil
}

func (df *DiskFile) WritePage(p *Page) error {
	if df.f == nil {
		return ErrFileClosed
	}
	no := p.No()
	if err := df.checkNo(no); err != nil {
		return err
	}
	if len(p.Buf) != df.pageSize {
		return fmt.Errorf("%w: want %d, got %d", ErrPageSize, df.pageSize, len(p.Buf))
	}
	if _, err := df.f.WriteAt(p.Buf, df.offset(no)); err != nil {
		return fmt.Errorf("write page %d: %w", no, err)
	}
	return nil
}

func (df *DiskFile) AllocatePage() (PageNo, error) {
	if df.f == nil {
		return 0, ErrFileClosed
	}

	var no PageNo
	if df.freeHead != 0 {
		// Reclaim the head of the free list; the next pointer sits in
		// the freed page's content area.
		no = df.freeHead
		buf := make([]byte, df.pageSize)
		if _, err := df.f.ReadAt(buf, df.offset(no)); err != nil {
			return 0, fmt.Errorf("read free page %d: %w", no, err)
		}
		df.freeHead = PageNo(binary.LittleEndian.Uint32(buf[PageHeaderSize : PageHeaderSize+4]))
	} else {
		no = PageNo(df.pageCount)
		df.pageCount++
	}

	fresh, err := NewPage(df.pageSize, no)
	if err != nil {
		return 0, err
	}
	if _, err := df.f.WriteAt(fresh.Buf, df.offset(no)); err != nil {
		return 0, fmt.Errorf("initialize page %d: %w", no, err)
	}
	if err := df.writeHeader(); err != nil {
		return 0, err
	}
	return no, nil
}

func (df *DiskFile) FreePage(no PageNo) error {
	if df.f == nil {
		return ErrFileClosed
	}
	if err := df.checkNo(no); err != nil {
		return err
	}

	buf := make([]byte, df.pageSize)
	if _, err := df.f.ReadAt(buf, df.offset(no)); err != nil {
		return fmt.Errorf("read page %d: %w", no, err)
	}
	p := Page{Buf: buf}
	if !p.InUse() {
		return fmt.Errorf("%w: page %d", ErrPageFreed, no)
	}

	p.setHeader(no, pageFlagFree)
	binary.LittleEndian.PutUint32(buf[PageHeaderSize:PageHeaderSize+4], uint32(df.freeHead))
	if _, err := df.f.WriteAt(buf, df.offset(no)); err != nil {
		return fmt.Errorf("free page %d: %w", no, err)
	}

	df.freeHead = no
	return df.writeHeader()
}

func (df *DiskFile) ID() FileID    { return df.id }
func (df *DiskFile) Name() string  { return df.name }
func (df *DiskFile) PageSize() int { return df.pageSize }

func (df *DiskFile) Close() error {
	if df.f == nil {
		return nil
	}
	if err := df.f.Sync(); err != nil {
		df.f.Close()
		df.f = nil
		return fmt.Errorf("sync page file: %w", err)
	}
	err := df.f.Close()
	df.f = nil
	return err
}
