package bmtree

// level is one layer of the Tree: either the top (batch) layer or the
// current low (leaf) layer, per spec.md §4.3. Entry at index i corresponds
// to identifier end-i: entries are stored in reverse identifier order
// because consumption (signing) proceeds from the lowest identifier of
// the level up to the highest, i.e. from the last index down to index 0.
// Concretely, index 0 holds identifier `end`, and the last index holds
// identifier `start`.
type level struct {
	parentPublicKey PublicKey
	start           uint64
	end             uint64
	entries         []signedPrivateKey
}

// createLevel builds a fresh level covering [start, end] inclusive, with
// entry i being CreateRandom(parent, end-i), per spec.md §4.3 "Create".
// Consumes (wipes) parent's reference is not implied; caller owns parent.
func createLevel(parent KeyPair, start, end uint64) (level, error) {
	n := entryCount(start, end)
	entries := make([]signedPrivateKey, n)
	for i := uint64(0); i < n; i++ {
		spk, err := createRandomSignedPrivateKey(parent, end-i)
		if err != nil {
			return level{}, err
		}
		entries[i] = spk
	}
	return level{
		parentPublicKey: parent.PublicKey(),
		start:           start,
		end:             end,
		entries:         entries,
	}, nil
}

// readLevel reads parentPublicKey, start, end, then exactly
// (end-start+1) signedPrivateKeys from the current stream position.
func readLevel(s Storage) (level, error) {
	var parentPublicKey PublicKey
	if err := readFull(s, parentPublicKey[:]); err != nil {
		return level{}, err
	}
	var startEnd [16]byte
	if err := readFull(s, startEnd[:]); err != nil {
		return level{}, err
	}
	start := decodeUint64From(startEnd[0:8])
	end := decodeUint64From(startEnd[8:16])

	n := entryCount(start, end)
	entries := make([]signedPrivateKey, n)
	for i := uint64(0); i < n; i++ {
		spk, err := readSignedPrivateKey(s)
		if err != nil {
			return level{}, err
		}
		entries[i] = spk
	}
	return level{parentPublicKey: parentPublicKey, start: start, end: end, entries: entries}, nil
}

// write writes the level's full on-disk record (header + every entry) at
// the current stream position.
func (lv *level) write(s Storage) error {
	header := encodeLevelHeaderBuffer(lv.parentPublicKey, lv.start, lv.end)
	if err := writeFull(s, header); err != nil {
		return err
	}
	for _, spk := range lv.entries {
		if err := spk.write(s); err != nil {
			return err
		}
	}
	return nil
}

// indexOf returns the in-memory slice index holding identifier.
func (lv *level) indexOf(identifier uint64) uint64 {
	return lv.end - identifier
}

// size returns the number of entries currently retained in memory.
func (lv *level) size() uint64 {
	return uint64(len(lv.entries))
}

// publicKeySignature returns (parentPublicKey, signature) for identifier
// without touching private material, per spec.md §4.3.
func (lv *level) publicKeySignature(identifier uint64) ParentPublicKeySignaturePair {
	index := lv.indexOf(identifier)
	return ParentPublicKeySignaturePair{
		ParentPublicKey: lv.parentPublicKey,
		Signature:       lv.entries[index].keySignature(),
	}
}

// keyPairAt returns the key pair retained for identifier. The caller must
// not have previously detached or wiped past that identifier.
func (lv *level) keyPairAt(identifier uint64) KeyPair {
	return lv.entries[lv.indexOf(identifier)].keyPair
}

// detachKeyPairAt moves the key pair for identifier out of its slot.
// Subsequent reads of that slot are undefined.
func (lv *level) detachKeyPairAt(identifier uint64) KeyPair {
	return lv.entries[lv.indexOf(identifier)].detachKeyPair()
}

// wipe truncates the in-memory entries so the retained size is
// min(currentSize, end-identifier): every entry whose identifier is
// <= identifier is dropped, leaving only entries for identifiers strictly
// greater than identifier. Per spec.md §4.3. Every dropped entry's private
// key is zeroed before the slice is shortened, since shrinking a slice
// does not clear the backing array it still shares with the dropped tail.
func (lv *level) wipe(identifier uint64) {
	newSize := lv.end - identifier
	if uint64(len(lv.entries)) < newSize {
		newSize = uint64(len(lv.entries))
	}
	for i := newSize; i < uint64(len(lv.entries)); i++ {
		lv.entries[i].keyPair.Wipe()
	}
	lv.entries = lv.entries[:newSize]
}

// wipeAll zeroes the private key of every entry still retained in memory.
// Used when a whole level is discarded outright (the low level on batch
// advance) rather than trimmed in place by wipe.
func (lv *level) wipeAll() {
	for i := range lv.entries {
		lv.entries[i].keyPair.Wipe()
	}
}
