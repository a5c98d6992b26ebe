package bmtree

import "fmt"

// Two-dimensional coordinate into the tree: a batch (outer, top-level)
// identifier and a key (inner, low-level) identifier.
//
// The ordering of KeyIdentifier is lexicographic on (BatchId, KeyId); it is
// this order that the Tree's monotonic sign/wipe state machine advances
// along.
type KeyIdentifier struct {
	BatchId uint64
	KeyId   uint64
}

// InvalidId is the sentinel used for "no identifier yet" (as the initial
// value of lastKeyIdentifier/lastWipeKeyIdentifier) and, in KeyId position
// only, to mean "the whole batch, not yet any specific key" in wipe calls.
const InvalidId uint64 = ^uint64(0)

// InvalidKeyIdentifier is the initial value used before any sign/wipe has
// occurred; its BatchId acts as negative infinity in Tree.check.
var InvalidKeyIdentifier = KeyIdentifier{BatchId: InvalidId, KeyId: 0}

// Less reports whether id sorts strictly before other under the
// lexicographic (BatchId, KeyId) order.
func (id KeyIdentifier) Less(other KeyIdentifier) bool {
	if id.BatchId != other.BatchId {
		return id.BatchId < other.BatchId
	}
	return id.KeyId < other.KeyId
}

// LessOrEqual reports whether id sorts at or before other.
func (id KeyIdentifier) LessOrEqual(other KeyIdentifier) bool {
	return id == other || id.Less(other)
}

func (id KeyIdentifier) String() string {
	if id.KeyId == InvalidId {
		return fmt.Sprintf("(%d,*)", id.BatchId)
	}
	return fmt.Sprintf("(%d,%d)", id.BatchId, id.KeyId)
}

// Options bounds and configures a Tree: the per-batch key count (Dilution)
// and the inclusive batch range the tree is permitted to sign/wipe over.
//
// Start.KeyId and End.KeyId are not meaningful for admission — only the
// BatchId component of Start/End bounds the outer (top) layer; see
// Tree.check.
type Options struct {
	Dilution           uint64
	StartKeyIdentifier KeyIdentifier
	EndKeyIdentifier   KeyIdentifier
}

// OptionsSize is the fixed on-disk encoding size of an Options value:
// one u64 (Dilution) plus two KeyIdentifiers (BatchId, KeyId, both u64).
const OptionsSize = 8 + 2*keyIdentifierSize

const keyIdentifierSize = 16
