package bmtree

// signedPrivateKey is a private key plus a parent-issued signature binding
// its public counterpart to an integer identifier, per spec.md §4.2.
type signedPrivateKey struct {
	keyPair   KeyPair
	signature Signature
	// detached is true once the key pair has been moved out via detach;
	// further reads of keyPair must not occur.
	detached bool
}

// createRandomSignedPrivateKey draws a fresh random private key, derives
// its public key, and signs `publicKey ‖ identifier_le64` with parent.
func createRandomSignedPrivateKey(parent KeyPair, identifier uint64) (signedPrivateKey, error) {
	kp, err := GenerateRandomKeyPair()
	if err != nil {
		return signedPrivateKey{}, err
	}
	pub := kp.PublicKey()
	sig := Sign(parent, pub[:], uint64LE(identifier))
	return signedPrivateKey{keyPair: kp, signature: sig}, nil
}

// readSignedPrivateKey reads the fixed `privateKey ‖ signature` record
// from the current stream position.
func readSignedPrivateKey(s Storage) (signedPrivateKey, error) {
	var private PrivateKey
	if err := readFull(s, private[:]); err != nil {
		return signedPrivateKey{}, err
	}
	var sig Signature
	if err := readFull(s, sig[:]); err != nil {
		return signedPrivateKey{}, err
	}
	return signedPrivateKey{keyPair: KeyPairFromPrivate(private), signature: sig}, nil
}

// write writes the fixed `privateKey ‖ signature` record at the current
// stream position.
func (spk signedPrivateKey) write(s Storage) error {
	buf := encodeSignedPrivateKeyBuffer(spk.keyPair.PrivateKey(), spk.signature)
	return writeFull(s, buf)
}

// wipeSignedPrivateKeySlot writes PrivateKeySize zero bytes at the current
// stream position, destroying whatever private-key material was stored
// there. Signature bytes are never touched by a wipe (they carry no
// secret); callers position the stream themselves.
func wipeSignedPrivateKeySlot(s Storage) error {
	var zeros [PrivateKeySize]byte
	return writeFull(s, zeros[:])
}

// keySignature returns the signature bound to this entry.
func (spk signedPrivateKey) keySignature() Signature {
	return spk.signature
}

// detachKeyPair moves the key pair out of spk, marking it dead. Callers
// must not read spk.keyPair afterward.
func (spk *signedPrivateKey) detachKeyPair() KeyPair {
	kp := spk.keyPair
	spk.keyPair = KeyPair{}
	spk.detached = true
	return kp
}
