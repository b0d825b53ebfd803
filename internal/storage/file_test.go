package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDiskFile(t *testing.T) *DiskFile {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.pavo")
	df, err := OpenDiskFile(path, DefaultPageSize)
	require.NoError(t, err)

	t.Cleanup(func() { _ = df.Close() })
	return df
}

func TestDiskFile_AllocateWriteRead(t *testing.T) {
	df := newTestDiskFile(t)

	no, err := df.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, PageNo(1), no)

	p, err := NewPage(DefaultPageSize, no)
	require.NoError(t, err)
	copy(p.Data(), "hello page")
	require.NoError(t, df.WritePage(p))

	got, err := NewPage(DefaultPageSize, 0)
	require.NoError(t, err)
	require.NoError(t, df.ReadPage(no, got))
	require.Equal(t, no, got.No())
	require.Equal(t, []byte("hello page"), got.Data()[:10])
}

func TestDiskFile_ReopenKeepsPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.pavo")

	df, err := OpenDiskFile(path, DefaultPageSize)
	require.NoError(t, err)

	no, err := df.AllocatePage()
	require.NoError(t, err)

	p, err := NewPage(DefaultPageSize, no)
	require.NoError(t, err)
	copy(p.Data(), "persisted")
	require.NoError(t, df.WritePage(p))
	require.NoError(t, df.Close())

	df2, err := OpenDiskFile(path, DefaultPageSize)
	require.NoError(t, err)
	defer df2.Close()

	got, err := NewPage(DefaultPageSize, 0)
	require.NoError(t, err)
	require.NoError(t, df2.ReadPage(no, got))
	require.Equal(t, []byte("persisted"), got.Data()[:9])

	// The next allocation continues after the persisted page.
	no2, err := df2.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, PageNo(2), no2)
}

func TestDiskFile_ReopenWrongPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "size.pavo")

	df, err := OpenDiskFile(path, DefaultPageSize)
	require.NoError(t, err)
	require.NoError(t, df.Close())

	_, err = OpenDiskFile(path, DefaultPageSize*2)
	require.ErrorIs(t, err, ErrBadHeader)
}

func TestDiskFile_FreeAndReuse(t *testing.T) {
	df := newTestDiskFile(t)

	no1, err := df.AllocatePage()
	require.NoError(t, err)
	no2, err := df.AllocatePage()
	require.NoError(t, err)
	require.NotEqual(t, no1, no2)

	require.NoError(t, df.FreePage(no1))

	// Reading a freed page fails.
	got, err := NewPage(DefaultPageSize, 0)
	require.NoError(t, err)
	require.ErrorIs(t, df.ReadPage(no1, got), ErrPageFreed)

	// Double free fails.
	require.ErrorIs(t, df.FreePage(no1), ErrPageFreed)

	// The freed slot is reclaimed before the file grows.
	no3, err := df.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, no1, no3)

	// The reclaimed page is zeroed and readable again.
	require.NoError(t, df.ReadPage(no3, got))
	require.Equal(t, byte(0), got.Data()[0])
}

func TestDiskFile_BadPageNumbers(t *testing.T) {
	df := newTestDiskFile(t)

	got, err := NewPage(DefaultPageSize, 0)
	require.NoError(t, err)

	require.ErrorIs(t, df.ReadPage(HeaderPageNo, got), ErrInvalidPageNo)
	require.ErrorIs(t, df.ReadPage(99, got), ErrPageNotFound)
	require.ErrorIs(t, df.FreePage(99), ErrPageNotFound)
}

func TestDiskFile_PageSizeMismatch(t *testing.T) {
	df := newTestDiskFile(t)

	no, err := df.AllocatePage()
	require.NoError(t, err)

	small := &Page{Buf: make([]byte, 128)}
	require.ErrorIs(t, df.ReadPage(no, small), ErrPageSize)
}

func TestDiskFile_ClosedOperationsFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.pavo")
	df, err := OpenDiskFile(path, DefaultPageSize)
	require.NoError(t, err)
	require.NoError(t, df.Close())

	_, err = df.AllocatePage()
	require.ErrorIs(t, err, ErrFileClosed)
}

func TestFileIDs_AreDistinct(t *testing.T) {
	a := NewMemFile("a", DefaultPageSize)
	b := NewMemFile("b", DefaultPageSize)
	require.NotEqual(t, a.ID(), b.ID())

	df := newTestDiskFile(t)
	require.NotEqual(t, a.ID(), df.ID())
	require.NotEqual(t, b.ID(), df.ID())
}

func TestMemFile_Contract(t *testing.T) {
	mf := NewMemFile("mem", DefaultPageSize)

	no, err := mf.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, PageNo(1), no)

	p, err := NewPage(DefaultPageSize, no)
	require.NoError(t, err)
	copy(p.Data(), "in memory")
	require.NoError(t, mf.WritePage(p))
	require.Equal(t, 1, mf.Writes)

	got, err := NewPage(DefaultPageSize, 0)
	require.NoError(t, err)
	require.NoError(t, mf.ReadPage(no, got))
	require.Equal(t, 1, mf.Reads)
	require.Equal(t, []byte("in memory"), got.Data()[:9])

	require.NoError(t, mf.FreePage(no))
	require.ErrorIs(t, mf.ReadPage(no, got), ErrPageFreed)
	require.ErrorIs(t, mf.FreePage(no), ErrPageFreed)

	// Freed numbers are reused.
	no2, err := mf.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, no, no2)
}

func TestMemFile_UnknownPage(t *testing.T) {
	mf := NewMemFile("mem", DefaultPageSize)

	got, err := NewPage(DefaultPageSize, 0)
	require.NoError(t, err)
	require.ErrorIs(t, mf.ReadPage(5, got), ErrPageNotFound)
}
