package bmtree

import "github.com/google/uuid"

// layer indexes the two Levels a Tree holds, per spec.md §3/§4.4.
const (
	topLayer = 0
	lowLayer = 1
)

// Tree orchestrates the top (batch) and low (leaf) Levels, enforces the
// monotonic signing/wipe state machine, and issues chained signatures.
// See spec.md §4.5.
type Tree struct {
	storage               Storage
	options               Options
	lastKeyIdentifier     KeyIdentifier
	lastWipeKeyIdentifier KeyIdentifier
	levels                [2]*level

	// runID tags every log line from this instance so that separate
	// process lifetimes of the same on-disk tree can be told apart in
	// aggregated logs; it is never persisted or part of any signed data.
	runID string
}

// Create initializes a fresh Tree: the top level is built and signed by
// rootKeyPair, covering the batch range named by options, and the whole
// record is written to storage starting at offset 0.
// lastKeyIdentifier and lastWipeKeyIdentifier both start InvalidKeyIdentifier.
func Create(rootKeyPair KeyPair, s Storage, options Options) (*Tree, error) {
	top, err := createLevel(rootKeyPair, options.StartKeyIdentifier.BatchId, options.EndKeyIdentifier.BatchId)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		storage:               s,
		options:               options,
		lastKeyIdentifier:     InvalidKeyIdentifier,
		lastWipeKeyIdentifier: InvalidKeyIdentifier,
	}
	t.levels[topLayer] = &top
	t.runID = uuid.New().String()

	if err := seek(s, 0); err != nil {
		return nil, err
	}
	if err := writeOptions(s, options); err != nil {
		return nil, err
	}
	if err := writeKeyIdentifier(s, t.lastKeyIdentifier); err != nil {
		return nil, err
	}
	if err := writeKeyIdentifier(s, t.lastWipeKeyIdentifier); err != nil {
		return nil, err
	}
	if err := top.write(s); err != nil {
		return nil, err
	}
	log.Logf("bmtree[%s]: created tree, top batch range [%d,%d]", t.runID, options.StartKeyIdentifier.BatchId, options.EndKeyIdentifier.BatchId)
	return t, nil
}

// FromStream reconstructs a Tree from its on-disk record: Options, the two
// last-identifiers, the top level, and — iff lastKeyIdentifier.BatchId is
// not InvalidId — the materialized low level.
func FromStream(s Storage) (*Tree, error) {
	if err := seek(s, 0); err != nil {
		return nil, err
	}
	options, err := readOptions(s)
	if err != nil {
		return nil, err
	}
	lastKeyIdentifier, err := readKeyIdentifier(s)
	if err != nil {
		return nil, err
	}
	lastWipeKeyIdentifier, err := readKeyIdentifier(s)
	if err != nil {
		return nil, err
	}

	top, err := readLevel(s)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		storage:               s,
		options:               options,
		lastKeyIdentifier:     lastKeyIdentifier,
		lastWipeKeyIdentifier: lastWipeKeyIdentifier,
	}
	t.levels[topLayer] = &top
	t.runID = uuid.New().String()

	if lastKeyIdentifier.BatchId != InvalidId {
		low, err := readLevel(s)
		if err != nil {
			return nil, err
		}
		t.levels[lowLayer] = &low
	}
	log.Logf("bmtree[%s]: loaded tree, lastKeyIdentifier=%s lastWipeKeyIdentifier=%s", t.runID, lastKeyIdentifier, lastWipeKeyIdentifier)
	return t, nil
}

// RootPublicKey returns the long-lived root public key, recovered from the
// top level's parent public key (the root key itself is never persisted
// separately — it only appears as the signer of the top level).
func (t *Tree) RootPublicKey() PublicKey {
	return t.levels[topLayer].parentPublicKey
}

// Options returns the Tree's immutable configuration.
func (t *Tree) Options() Options {
	return t.options
}

// check is the admission predicate of spec.md §4.5: id must strictly
// advance past reference, its BatchId within [Start.BatchId, End.BatchId]
// — the KeyId components of Start/End are not meaningful for admission —
// and its KeyId below Dilution.
func (t *Tree) check(id, reference KeyIdentifier) bool {
	if !referenceAdmits(reference, id) {
		return false
	}
	if id.BatchId < t.options.StartKeyIdentifier.BatchId || id.BatchId > t.options.EndKeyIdentifier.BatchId {
		return false
	}
	return id.KeyId < t.options.Dilution
}

// referenceAdmits reports whether id strictly advances past reference: a
// repeat of an already-signed or already-wiped identifier is rejected, not
// admitted, since re-signing or re-wiping the same identifier would either
// replay a signature or re-zero an already-retired slot. An InvalidId
// BatchId in reference acts as negative infinity (no prior sign/wipe yet).
// Within the same batch, an InvalidId KeyId in reference (a wipe((b,
// INVALID)) that marked the batch entered without consuming any key) also
// acts as negative infinity, admitting any KeyId in that batch.
func referenceAdmits(reference, id KeyIdentifier) bool {
	if reference.BatchId == InvalidId {
		return true
	}
	if id.BatchId != reference.BatchId {
		return id.BatchId > reference.BatchId
	}
	if reference.KeyId == InvalidId {
		return true
	}
	return id.KeyId > reference.KeyId
}

// CanSign reports whether id currently admits a sign call: it must
// strictly advance past both the last signed identifier and the last
// wiped one. The latter check is what keeps Sign from ever indexing into
// an entry a prior Wipe already trimmed out of the low level's memory —
// without it, a wipe ahead of the last signed identifier (permitted by
// Wipe's own admission, which only tracks lastWipeKeyIdentifier) would
// leave CanSign looking solely at lastKeyIdentifier and pass an id whose
// backing entry no longer exists.
func (t *Tree) CanSign(id KeyIdentifier) bool {
	if !t.check(id, t.lastKeyIdentifier) {
		return false
	}
	return referenceAdmits(t.lastWipeKeyIdentifier, id)
}

// levelOffset returns the absolute byte offset of the given layer's
// on-disk record.
func (t *Tree) levelOffset(which int) int64 {
	if which == topLayer {
		return int64(TreeHeaderSize)
	}
	top := t.levels[topLayer]
	return int64(TreeHeaderSize) + levelSize(top.start, top.end)
}

// Sign admits id, materializes the low layer on first use of its batch,
// signs data with the leaf key at id.KeyId, persists the advance of
// lastKeyIdentifier, and returns the three-segment chain. Per spec.md
// §4.5; on any InvalidKeyIdentifier failure the Tree is left unchanged.
func (t *Tree) Sign(id KeyIdentifier, data []byte) (TreeSignature, error) {
	if !t.CanSign(id) {
		return TreeSignature{}, invalidKeyIdentifierError("sign", id)
	}

	if id.BatchId != t.lastKeyIdentifier.BatchId {
		if err := t.enterBatch(id.BatchId); err != nil {
			return TreeSignature{}, err
		}
	}

	low := t.levels[lowLayer]
	leafKeyPair := low.keyPairAt(id.KeyId)
	messageSig := Sign(leafKeyPair, data)

	if err := seek(t.storage, int64(OptionsSize)); err != nil {
		return TreeSignature{}, err
	}
	if err := writeKeyIdentifier(t.storage, id); err != nil {
		return TreeSignature{}, err
	}
	t.lastKeyIdentifier = id

	root := t.levels[topLayer].publicKeySignature(id.BatchId)
	top := low.publicKeySignature(id.KeyId)
	bottom := ParentPublicKeySignaturePair{
		ParentPublicKey: leafKeyPair.PublicKey(),
		Signature:       messageSig,
	}
	log.Logf("bmtree[%s]: signed %s", t.runID, id)
	return TreeSignature{Root: root, Top: top, Bottom: bottom}, nil
}

// enterBatch detaches the top-level key for batchId, zeroes its disk slot
// immediately (the top-level key's private material must not survive the
// batch's entry, per spec.md §3's lifecycle note), discards the
// previously materialized low level (zeroing every private key it still
// held in memory before dropping it), and materializes a fresh low level
// covering [0, Dilution-1] signed by the detached key.
func (t *Tree) enterBatch(batchId uint64) error {
	top := t.levels[topLayer]
	index := top.indexOf(batchId)
	batchKeyPair := top.detachKeyPairAt(batchId)

	if err := seek(t.storage, t.levelOffset(topLayer)+indexToOffset(index)); err != nil {
		return err
	}
	if err := wipeSignedPrivateKeySlot(t.storage); err != nil {
		return err
	}

	if prev := t.levels[lowLayer]; prev != nil {
		prev.wipeAll()
	}

	low, err := createLevel(batchKeyPair, 0, t.options.Dilution-1)
	if err != nil {
		return err
	}
	if err := seek(t.storage, t.levelOffset(lowLayer)); err != nil {
		return err
	}
	if err := low.write(t.storage); err != nil {
		return err
	}
	t.levels[lowLayer] = &low
	log.Logf("bmtree[%s]: entered batch %d", t.runID, batchId)
	return nil
}

// Wipe admits id against lastWipeKeyIdentifier, destroys consumed private
// material in the named layer(s), and persists the advance of
// lastWipeKeyIdentifier. Per spec.md §4.5.
func (t *Tree) Wipe(id KeyIdentifier) error {
	normalizedKeyId := id.KeyId
	if normalizedKeyId == InvalidId {
		normalizedKeyId = 0
	}
	checkId := KeyIdentifier{BatchId: id.BatchId, KeyId: normalizedKeyId}
	if !t.check(checkId, t.lastWipeKeyIdentifier) {
		return invalidKeyIdentifierError("wipe", id)
	}

	if id.BatchId != t.lastWipeKeyIdentifier.BatchId {
		if err := t.wipeLayer(topLayer, id.BatchId); err != nil {
			return err
		}
	}
	if id.KeyId != InvalidId && t.levels[lowLayer] != nil {
		if err := t.wipeLayer(lowLayer, id.KeyId); err != nil {
			return err
		}
	}

	if err := seek(t.storage, int64(OptionsSize)+int64(keyIdentifierSize)); err != nil {
		return err
	}
	if err := writeKeyIdentifier(t.storage, id); err != nil {
		return err
	}
	t.lastWipeKeyIdentifier = id
	log.Logf("bmtree[%s]: wiped %s", t.runID, id)
	return nil
}

// wipeLayer is the internal per-layer wipe of spec.md §4.5: entries whose
// index is strictly greater than index(identifier) hold identifiers below
// identifier and were already consumed (consumption proceeds from low
// identifier to high, i.e. from high index to low) and are wiped first;
// the in-memory vector is then truncated; finally the entry at index
// itself — also being retired by this call — is wiped on disk. The
// truncation itself already drops the entry at index from memory (see
// DESIGN.md for the open question this raises, retained faithfully).
func (t *Tree) wipeLayer(which int, identifier uint64) error {
	lv := t.levels[which]
	levelStart := t.levelOffset(which)
	index := lv.indexOf(identifier)
	sizeBeforeTruncate := lv.size()

	for i := index + 1; i < sizeBeforeTruncate; i++ {
		if err := seek(t.storage, levelStart+indexToOffset(i)); err != nil {
			return err
		}
		if err := wipeSignedPrivateKeySlot(t.storage); err != nil {
			return err
		}
	}

	lv.wipe(identifier)

	if err := seek(t.storage, levelStart+indexToOffset(index)); err != nil {
		return err
	}
	return wipeSignedPrivateKeySlot(t.storage)
}
