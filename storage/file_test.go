package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStorageWriteSeekRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.bin")

	fs, err := OpenFile(path)
	require.NoError(t, err)
	defer fs.Close()

	_, err = fs.Write([]byte("hello world"))
	require.NoError(t, err)

	require.NoError(t, fs.Seek(0))
	buf := make([]byte, 5)
	n, err := fs.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))

	require.NoError(t, fs.Sync())
}

func TestFileStorageSecondOpenFailsWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.bin")

	first, err := OpenFile(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenFile(path)
	require.Error(t, err, "a second open of the same path should fail to acquire the lock")
}

func TestFileStorageReadByte(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.bin")
	fs, err := OpenFile(path)
	require.NoError(t, err)
	defer fs.Close()

	_, err = fs.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.NoError(t, fs.Seek(0))

	b, err := fs.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x01), b)
}
