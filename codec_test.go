package bmtree

import "testing"

func TestTreeHeaderSize(t *testing.T) {
	// 8 (Dilution) + 2*16 (Options' two KeyIdentifiers) + 2*16
	// (lastKeyIdentifier, lastWipeKeyIdentifier) = 72, per spec.md §4.4.
	if TreeHeaderSize != 72 {
		t.Fatalf("TreeHeaderSize = %d, want 72", TreeHeaderSize)
	}
}

func TestLayerHeaderSize(t *testing.T) {
	if LayerHeaderSize != 48 {
		t.Fatalf("LayerHeaderSize = %d, want 48", LayerHeaderSize)
	}
}

func TestSignedPrivateKeyEntrySize(t *testing.T) {
	if SignedPrivateKeyEntrySize != 96 {
		t.Fatalf("SignedPrivateKeyEntrySize = %d, want 96", SignedPrivateKeyEntrySize)
	}
}

func TestKeyIdentifierRoundTrip(t *testing.T) {
	id := KeyIdentifier{BatchId: 7, KeyId: 42}
	s := newMemStorage()
	if err := writeKeyIdentifier(s, id); err != nil {
		t.Fatalf("writeKeyIdentifier: %v", err)
	}
	if err := s.Seek(0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	got, err := readKeyIdentifier(s)
	if err != nil {
		t.Fatalf("readKeyIdentifier: %v", err)
	}
	if got != id {
		t.Fatalf("round-trip mismatch: got %v, want %v", got, id)
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	o := Options{
		Dilution:           4,
		StartKeyIdentifier: KeyIdentifier{0, 0},
		EndKeyIdentifier:   KeyIdentifier{2, 0},
	}
	s := newMemStorage()
	if err := writeOptions(s, o); err != nil {
		t.Fatalf("writeOptions: %v", err)
	}
	if err := s.Seek(0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	got, err := readOptions(s)
	if err != nil {
		t.Fatalf("readOptions: %v", err)
	}
	if got != o {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, o)
	}
}

func TestIndexToOffset(t *testing.T) {
	if indexToOffset(0) != int64(LayerHeaderSize) {
		t.Fatalf("indexToOffset(0) = %d, want %d", indexToOffset(0), LayerHeaderSize)
	}
	want := int64(LayerHeaderSize) + int64(SignedPrivateKeyEntrySize)
	if indexToOffset(1) != want {
		t.Fatalf("indexToOffset(1) = %d, want %d", indexToOffset(1), want)
	}
}

func TestLevelSize(t *testing.T) {
	got := levelSize(0, 3)
	want := int64(LayerHeaderSize) + 4*int64(SignedPrivateKeyEntrySize)
	if got != want {
		t.Fatalf("levelSize(0,3) = %d, want %d", got, want)
	}
}
