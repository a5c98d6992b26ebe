package bmtree

// ParentPublicKeySignaturePair is one link of a TreeSignature chain: the
// public key of the signer, plus the signature it produced over the next
// link down (or, for the bottom link, over the signed message itself).
type ParentPublicKeySignaturePair struct {
	ParentPublicKey PublicKey
	Signature       Signature
}

// TreeSignature is the three-link chain a Tree produces for a message,
// per spec.md §4.6: the root key attests to the top-layer key used for
// the signing batch, that key attests to the bottom-layer (leaf) key used
// for the specific identifier, and the leaf key signs the message itself.
type TreeSignature struct {
	Root   ParentPublicKeySignaturePair
	Top    ParentPublicKeySignaturePair
	Bottom ParentPublicKeySignaturePair
}

// Verify checks a TreeSignature chain against rootPublicKey for the given
// identifier and message, independent of any Tree instance or on-disk
// state. It returns true only if every link verifies and the root link's
// declared public key matches rootPublicKey.
func Verify(rootPublicKey PublicKey, identifier KeyIdentifier, message []byte, sig TreeSignature) bool {
	if sig.Root.ParentPublicKey != rootPublicKey {
		return false
	}
	if !verifySignature(rootPublicKey, sig.Root.Signature, sig.Top.ParentPublicKey[:], uint64LE(identifier.BatchId)) {
		return false
	}
	if !verifySignature(sig.Top.ParentPublicKey, sig.Top.Signature, sig.Bottom.ParentPublicKey[:], uint64LE(identifier.KeyId)) {
		return false
	}
	return verifySignature(sig.Bottom.ParentPublicKey, sig.Bottom.Signature, message)
}
