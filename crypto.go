package bmtree

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/tqm-dev/bmtree/internal/zero"
)

// Fixed sizes of the scheme's byte encodings, per spec.md §4.1.
const (
	PrivateKeySize = ed25519.SeedSize       // 32
	PublicKeySize  = ed25519.PublicKeySize  // 32
	SignatureSize  = ed25519.SignatureSize  // 64
)

// PrivateKey is a 32-byte seed for the signature scheme. Its zero value is
// not a valid key; use GenerateRandomKeyPair or KeyPair.Wipe's caller
// discipline to manage lifetime.
type PrivateKey [PrivateKeySize]byte

// PublicKey is the 32-byte public counterpart of a PrivateKey.
type PublicKey [PublicKeySize]byte

// Signature is the 64-byte output of Sign / input to Verify.
type Signature [SignatureSize]byte

// KeyPair couples a private key with its derived public key. The private
// half is secret material: call Wipe when it is no longer needed so no
// copy of it persists in memory (see spec.md §5, §9).
type KeyPair struct {
	private PrivateKey
	public  PublicKey
}

// GenerateRandomKeyPair draws a fresh private key from a cryptographically
// secure source and derives its public counterpart.
func GenerateRandomKeyPair() (KeyPair, error) {
	var seed PrivateKey
	if _, err := rand.Read(seed[:]); err != nil {
		return KeyPair{}, wrapErrorf(err, "failed to generate private key")
	}
	return KeyPairFromPrivate(seed), nil
}

// KeyPairFromPrivate derives the public key for a given private key.
func KeyPairFromPrivate(private PrivateKey) KeyPair {
	edPriv := ed25519.NewKeyFromSeed(private[:])
	var pub PublicKey
	copy(pub[:], edPriv[ed25519.SeedSize:])
	return KeyPair{private: private, public: pub}
}

// PrivateKey returns the key pair's private half.
func (kp KeyPair) PrivateKey() PrivateKey { return kp.private }

// PublicKey returns the key pair's public half.
func (kp KeyPair) PublicKey() PublicKey { return kp.public }

// Wipe overwrites the private half of kp with zeros. kp must not be used
// for signing afterward.
func (kp *KeyPair) Wipe() {
	zero.Bytes(kp.private[:])
}

// Sign signs the concatenation of messageParts with kp's private key.
func Sign(kp KeyPair, messageParts ...[]byte) Signature {
	edPriv := ed25519.NewKeyFromSeed(kp.private[:])
	msg := concat(messageParts...)
	raw := ed25519.Sign(edPriv, msg)
	var sig Signature
	copy(sig[:], raw)
	return sig
}

// verifySignature checks that signature is valid for the concatenation of
// messageParts under publicKey. It never panics and returns false on any
// malformed input, per spec.md §7. The tree-level, public Verify lives in
// verify.go and composes three calls to this primitive.
func verifySignature(publicKey PublicKey, signature Signature, messageParts ...[]byte) bool {
	msg := concat(messageParts...)
	return ed25519.Verify(publicKey[:], msg, signature[:])
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// uint64LE encodes v as little-endian bytes, per spec.md §4.1.
func uint64LE(v uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return buf
}
