// Package storage provides concrete Storage backings for a bmtree Tree:
// a plain file-backed implementation guarded by an exclusive lock file,
// and an mmap-backed implementation for fast in-place wipes. Both satisfy
// github.com/tqm-dev/bmtree.Storage structurally.
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/nightlyone/lockfile"
	"golang.org/x/sys/unix"
)

// FileStorage is a Storage backed by a plain *os.File, guarded by a
// sibling lock file so a second process opening the same tree file is
// detected rather than silently corrupting it. Mirrors the teacher's
// container.go pattern of pairing an os.File with a nightlyone/lockfile
// guard over the same path.
type FileStorage struct {
	path string
	file *os.File
	lock lockfile.Lockfile
}

// OpenFile opens (or creates) the file at path for exclusive single-writer
// use. The caller must call Close when done.
func OpenFile(path string) (*FileStorage, error) {
	lock, err := lockfile.New(path + ".lock")
	if err != nil {
		return nil, err
	}
	if err := lock.TryLock(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return &FileStorage{path: path, file: f, lock: lock}, nil
}

func (fs *FileStorage) Read(p []byte) (int, error)  { return fs.file.Read(p) }
func (fs *FileStorage) Write(p []byte) (int, error) { return fs.file.Write(p) }

func (fs *FileStorage) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(fs.file, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Seek moves the file's position to the given absolute offset.
func (fs *FileStorage) Seek(offset int64) error {
	_, err := fs.file.Seek(offset, io.SeekStart)
	return err
}

// Sync flushes the file's contents and its parent directory entry to
// stable storage, following the teacher's writeKeyFile fsync-the-directory
// pattern so a crash cannot lose the directory entry of a newly created
// file.
func (fs *FileStorage) Sync() error {
	if err := fs.file.Sync(); err != nil {
		return err
	}
	dir, err := os.Open(filepath.Dir(fs.path))
	if err != nil {
		return err
	}
	defer dir.Close()
	return unix.Fsync(int(dir.Fd()))
}

// Truncate resizes the backing file to size bytes.
func (fs *FileStorage) Truncate(size int64) error {
	return fs.file.Truncate(size)
}

// Close releases the file handle and the lock guarding it, aggregating
// both failures (rather than discarding one) the way the teacher's
// fsContainer.Close aggregates its own teardown errors.
func (fs *FileStorage) Close() error {
	var result *multierror.Error
	if err := fs.file.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := fs.lock.Unlock(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
