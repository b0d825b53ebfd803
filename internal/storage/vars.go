package storage

import "errors"

const (
	OneKB = 1 << 10
	OneMB = 1 << 20

	// DefaultPageSize is 8 KiB, similar to PostgreSQL.
	DefaultPageSize = 8 * OneKB

	// PageHeaderSize is the fixed prefix of every page: the page number
	// followed by a flags word. Content after the header is opaque to
	// this layer.
	PageHeaderSize = 8

	// HeaderPageNo is reserved for the file header; user pages start at 1.
	HeaderPageNo PageNo = 0
)

const (
	FileMode0644 = 0o644 // rw-r--r--
	FileMode0755 = 0o755 // rwxr-xr-x
)

var (
	ErrPageNotFound  = errors.New("storage: page not found")
	ErrPageFreed     = errors.New("storage: page has been freed")
	ErrPageSize      = errors.New("storage: page buffer size mismatch")
	ErrBadHeader     = errors.New("storage: file header is corrupted")
	ErrFileClosed    = errors.New("storage: file is closed")
	ErrInvalidPageNo = errors.New("storage: invalid page number")
)
