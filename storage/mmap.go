package storage

import (
	"errors"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MmapStorage is a Storage backed by a memory-mapped file. Writes land
// directly in the mapped pages, making a wipe's zero-overwrite an in-place
// memset rather than a seek-then-write syscall pair; Sync flushes the
// mapping back with mmap's own msync.
type MmapStorage struct {
	file *os.File
	data mmap.MMap
	pos  int64
}

// OpenMmap maps the file at path, which must already be sized to its
// final length: the mapping never grows, and a write past the mapped
// length fails.
func OpenMmap(path string) (*MmapStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &MmapStorage{file: f, data: m}, nil
}

func (ms *MmapStorage) Read(p []byte) (int, error) {
	if ms.pos >= int64(len(ms.data)) {
		return 0, io.EOF
	}
	n := copy(p, ms.data[ms.pos:])
	ms.pos += int64(n)
	return n, nil
}

func (ms *MmapStorage) ReadByte() (byte, error) {
	if ms.pos >= int64(len(ms.data)) {
		return 0, io.EOF
	}
	b := ms.data[ms.pos]
	ms.pos++
	return b, nil
}

func (ms *MmapStorage) Write(p []byte) (int, error) {
	if ms.pos+int64(len(p)) > int64(len(ms.data)) {
		return 0, errors.New("bmtree/storage: write past mapped length")
	}
	n := copy(ms.data[ms.pos:], p)
	ms.pos += int64(n)
	return n, nil
}

// Seek moves the mapping's position to the given absolute offset.
func (ms *MmapStorage) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(ms.data)) {
		return errors.New("bmtree/storage: seek out of range")
	}
	ms.pos = offset
	return nil
}

// Sync flushes the mapped pages to the backing file.
func (ms *MmapStorage) Sync() error {
	return ms.data.Flush()
}

// Close unmaps and closes the backing file.
func (ms *MmapStorage) Close() error {
	unmapErr := ms.data.Unmap()
	closeErr := ms.file.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
