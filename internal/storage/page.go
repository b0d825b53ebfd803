package storage

import (
	"encoding/binary"
	"fmt"
)

// PageNo identifies a page within its owning file.
type PageNo uint32

// FileID is a process-unique identity assigned to a file when it is
// opened. It is stable for the lifetime of the File value and usable as
// a map key.
type FileID uint64

const (
	pageFlagUsed uint32 = 1 << iota
	pageFlagFree
)

// Page is one fixed-size block of raw bytes. The first PageHeaderSize
// bytes hold the page number and a flags word so a page can be written
// back without a separate page-number argument; everything after the
// header is opaque content.
type Page struct {
	Buf []byte
}

// NewPage returns an initialized in-use page of the given total size.
func NewPage(pageSize int, no PageNo) (*Page, error) {
	if pageSize <= PageHeaderSize {
		return nil, fmt.Errorf("storage: page size %d too small", pageSize)
	}
	p := &Page{Buf: make([]byte, pageSize)}
	p.Reset(no)
	return p, nil
}

// No returns the page number embedded in the header.
func (p *Page) No() PageNo {
	return PageNo(binary.LittleEndian.Uint32(p.Buf[0:4]))
}

func (p *Page) flags() uint32 {
	return binary.LittleEndian.Uint32(p.Buf[4:8])
}

func (p *Page) setHeader(no PageNo, flags uint32) {
	binary.LittleEndian.PutUint32(p.Buf[0:4], uint32(no))
	binary.LittleEndian.PutUint32(p.Buf[4:8], flags)
}

// Reset zeroes the content area and stamps the header for page no,
// producing the same bytes a freshly allocated page has on disk.
func (p *Page) Reset(no PageNo) {
	for i := range p.Buf {
		p.Buf[i] = 0
	}
	p.setHeader(no, pageFlagUsed)
}

// Data returns the mutable content area after the header.
func (p *Page) Data() []byte {
	return p.Buf[PageHeaderSize:]
}

// InUse reports whether the header marks this page as allocated.
func (p *Page) InUse() bool {
	return p.flags()&pageFlagUsed != 0 && p.flags()&pageFlagFree == 0
}
