package bmtree

import "testing"

func testParentKeyPair(t *testing.T) KeyPair {
	t.Helper()
	kp, err := GenerateRandomKeyPair()
	if err != nil {
		t.Fatalf("GenerateRandomKeyPair: %v", err)
	}
	return kp
}

func TestCreateLevelEntryCount(t *testing.T) {
	parent := testParentKeyPair(t)
	lv, err := createLevel(parent, 0, 3)
	if err != nil {
		t.Fatalf("createLevel: %v", err)
	}
	if lv.size() != 4 {
		t.Fatalf("size() = %d, want 4", lv.size())
	}
	if lv.parentPublicKey != parent.PublicKey() {
		t.Fatalf("parentPublicKey mismatch")
	}
}

func TestLevelPublicKeySignatureVerifies(t *testing.T) {
	parent := testParentKeyPair(t)
	lv, err := createLevel(parent, 0, 3)
	if err != nil {
		t.Fatalf("createLevel: %v", err)
	}
	for _, identifier := range []uint64{0, 1, 2, 3} {
		pair := lv.publicKeySignature(identifier)
		leafPublic := lv.keyPairAt(identifier).PublicKey()
		if !verifySignature(parent.PublicKey(), pair.Signature, leafPublic[:], uint64LE(identifier)) {
			t.Fatalf("signature for identifier %d does not verify", identifier)
		}
	}
}

func TestLevelWriteReadRoundTrip(t *testing.T) {
	parent := testParentKeyPair(t)
	lv, err := createLevel(parent, 0, 3)
	if err != nil {
		t.Fatalf("createLevel: %v", err)
	}
	s := newMemStorage()
	if err := lv.write(s); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Seek(0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	got, err := readLevel(s)
	if err != nil {
		t.Fatalf("readLevel: %v", err)
	}
	if got.parentPublicKey != lv.parentPublicKey || got.start != lv.start || got.end != lv.end {
		t.Fatalf("level header mismatch after round-trip")
	}
	if got.size() != lv.size() {
		t.Fatalf("entry count mismatch: got %d, want %d", got.size(), lv.size())
	}
	for i := range got.entries {
		if got.entries[i].keyPair.PrivateKey() != lv.entries[i].keyPair.PrivateKey() {
			t.Fatalf("entry %d private key mismatch", i)
		}
		if got.entries[i].signature != lv.entries[i].signature {
			t.Fatalf("entry %d signature mismatch", i)
		}
	}
}

func TestLevelWipeTruncatesRetainedEntries(t *testing.T) {
	parent := testParentKeyPair(t)
	lv, err := createLevel(parent, 0, 3)
	if err != nil {
		t.Fatalf("createLevel: %v", err)
	}
	// entries: index0->id3, index1->id2, index2->id1, index3->id0
	lv.wipe(1)
	// retained size = min(4, end-identifier) = min(4, 3-1) = 2: indices 0,1 -> ids 3,2.
	if lv.size() != 2 {
		t.Fatalf("size() after wipe(1) = %d, want 2", lv.size())
	}
}

func TestLevelDetachKeyPairAtEmptiesSlot(t *testing.T) {
	parent := testParentKeyPair(t)
	lv, err := createLevel(parent, 0, 3)
	if err != nil {
		t.Fatalf("createLevel: %v", err)
	}
	before := lv.keyPairAt(2)
	detached := lv.detachKeyPairAt(2)
	if detached.PrivateKey() != before.PrivateKey() {
		t.Fatalf("detachKeyPairAt returned a different key pair than was held")
	}
	index := lv.indexOf(2)
	if lv.entries[index].detached != true {
		t.Fatalf("slot not marked detached")
	}
	var zero PrivateKey
	if lv.entries[index].keyPair.PrivateKey() != zero {
		t.Fatalf("detached slot still holds private key material")
	}
}
