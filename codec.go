package bmtree

import (
	"encoding/binary"

	"github.com/bwesterb/byteswriter"
)

// Fixed-layout little-endian binary format, per spec.md §4.4.
//
//	[Options]             OptionsSize
//	[KeyIdentifier]       lastKeyIdentifier
//	[KeyIdentifier]       lastWipeKeyIdentifier
//	[Level 0]             top layer
//	[Level 1]             low layer, present only once lastKeyIdentifier.BatchId != InvalidId
//
// TreeHeaderSize, LayerHeaderSize and SignedPrivateKeyEntrySize are exactly
// the offsets spec.md names; levelOffset folds over them to find where a
// given level begins.

const (
	// TreeHeaderSize = sizeof(Options) + 2*sizeof(KeyIdentifier).
	TreeHeaderSize = OptionsSize + 2*keyIdentifierSize

	// LayerHeaderSize = sizeof(publicKey) + 2*sizeof(uint64).
	LayerHeaderSize = PublicKeySize + 2*8

	// SignedPrivateKeyEntrySize = sizeof(privateKey) + sizeof(signature).
	SignedPrivateKeyEntrySize = PrivateKeySize + SignatureSize
)

func encodeUint64Into(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
}

func decodeUint64From(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

func encodeKeyIdentifierInto(buf []byte, id KeyIdentifier) {
	encodeUint64Into(buf[0:8], id.BatchId)
	encodeUint64Into(buf[8:16], id.KeyId)
}

func decodeKeyIdentifierFrom(buf []byte) KeyIdentifier {
	return KeyIdentifier{
		BatchId: decodeUint64From(buf[0:8]),
		KeyId:   decodeUint64From(buf[8:16]),
	}
}

func encodeOptionsInto(buf []byte, o Options) {
	encodeUint64Into(buf[0:8], o.Dilution)
	encodeKeyIdentifierInto(buf[8:24], o.StartKeyIdentifier)
	encodeKeyIdentifierInto(buf[24:40], o.EndKeyIdentifier)
}

func decodeOptionsFrom(buf []byte) Options {
	return Options{
		Dilution:           decodeUint64From(buf[0:8]),
		StartKeyIdentifier: decodeKeyIdentifierFrom(buf[8:24]),
		EndKeyIdentifier:   decodeKeyIdentifierFrom(buf[24:40]),
	}
}

// readKeyIdentifier reads one KeyIdentifier from the current stream
// position.
func readKeyIdentifier(s Storage) (KeyIdentifier, error) {
	var buf [keyIdentifierSize]byte
	if err := readFull(s, buf[:]); err != nil {
		return KeyIdentifier{}, err
	}
	return decodeKeyIdentifierFrom(buf[:]), nil
}

// writeKeyIdentifier writes id at the current stream position.
func writeKeyIdentifier(s Storage, id KeyIdentifier) error {
	var buf [keyIdentifierSize]byte
	encodeKeyIdentifierInto(buf[:], id)
	return writeFull(s, buf[:])
}

// readOptions reads an Options from the current stream position.
func readOptions(s Storage) (Options, error) {
	var buf [OptionsSize]byte
	if err := readFull(s, buf[:]); err != nil {
		return Options{}, err
	}
	return decodeOptionsFrom(buf[:]), nil
}

// writeOptions writes o at the current stream position.
func writeOptions(s Storage, o Options) error {
	var buf [OptionsSize]byte
	encodeOptionsInto(buf[:], o)
	return writeFull(s, buf[:])
}

// entryCount returns the number of identifiers covered by [start, end]
// inclusive.
func entryCount(start, end uint64) uint64 {
	return end - start + 1
}

// indexToOffset returns the byte offset, relative to the start of a level,
// of the entry with the given index within that level (the layer header
// comes first; entry 0 begins right after it).
func indexToOffset(index uint64) int64 {
	return int64(LayerHeaderSize) + int64(index)*int64(SignedPrivateKeyEntrySize)
}

// levelSize returns the total on-disk size of a level spanning
// [start, end] inclusive.
func levelSize(start, end uint64) int64 {
	return indexToOffset(entryCount(start, end))
}

// encodeSignedPrivateKeyBuffer builds the fixed Entry_Size record
// `privateKey ‖ signature` into a single pre-sized buffer using
// byteswriter, mirroring the teacher's container.go pattern of assembling
// a fixed record via byteswriter before a single write to the backing
// stream.
func encodeSignedPrivateKeyBuffer(private PrivateKey, sig Signature) []byte {
	buf := make([]byte, SignedPrivateKeyEntrySize)
	w := byteswriter.NewWriter(buf)
	_, _ = w.Write(private[:])
	_, _ = w.Write(sig[:])
	return buf
}

// encodeLevelHeaderBuffer builds the fixed Layer_Header_Size record
// `parentPublicKey ‖ start ‖ end` into a single pre-sized buffer.
func encodeLevelHeaderBuffer(parentPublicKey PublicKey, start, end uint64) []byte {
	buf := make([]byte, LayerHeaderSize)
	w := byteswriter.NewWriter(buf)
	_, _ = w.Write(parentPublicKey[:])
	var startEnd [16]byte
	encodeUint64Into(startEnd[0:8], start)
	encodeUint64Into(startEnd[8:16], end)
	_, _ = w.Write(startEnd[:])
	return buf
}
