package ssz

import (
	"encoding/binary"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// FieldRange is a [start, end) byte range within a serialized container,
// returned by ReadFieldRanges (spec §4.3's "container field ranges" hook
// used by the deserialization override in §4.9).
type FieldRange struct {
	Start, End int
}

// ReadFieldRanges returns the byte range of each field in a serialized
// fixed-size container: every field here is a 32-byte-rooted basic type, so
// ranges are simply consecutive fixedSize-byte windows. Variable-size
// containers (not needed by Checkpoint) would additionally dereference an
// offset word per variable field; that case is handled by the
// fork-specific BeaconState container once built, not by this primitive.
func ReadFieldRanges(data []byte, fixedSize int, fieldCount int) ([]FieldRange, error) {
	if len(data) != fixedSize*fieldCount {
		return nil, bserrors.ErrUnexpectedRemainder
	}
	out := make([]FieldRange, fieldCount)
	for i := range out {
		out[i] = FieldRange{Start: i * fixedSize, End: (i + 1) * fixedSize}
	}
	return out, nil
}

// Checkpoint is the smallest fixed container in the beacon state: a
// 40-byte {epoch: uint64, root: Bytes32} pair, used throughout attestation
// and finality bookkeeping. It doubles as the worked round-trip example in
// spec §8 scenario 3.
type Checkpoint struct {
	Epoch uint64
	Root  [32]byte
}

// CheckpointSerializeSize is the fixed wire size: 8 bytes epoch + 32 bytes
// root.
const CheckpointSerializeSize = 40

// Serialize writes the 40-byte wire form: bytes[0:8] = epoch LE,
// bytes[8:40] = root.
func (c Checkpoint) Serialize() []byte {
	out := make([]byte, CheckpointSerializeSize)
	binary.LittleEndian.PutUint64(out[0:8], c.Epoch)
	copy(out[8:40], c.Root[:])
	return out
}

// DeserializeCheckpoint parses the 40-byte wire form produced by Serialize.
func DeserializeCheckpoint(data []byte) (Checkpoint, error) {
	if len(data) != CheckpointSerializeSize {
		return Checkpoint{}, bserrors.ErrUnexpectedRemainder
	}
	var c Checkpoint
	c.Epoch = binary.LittleEndian.Uint64(data[0:8])
	copy(c.Root[:], data[8:40])
	return c, nil
}

// HashTreeRoot is hash_two(leaf_of_u64(epoch), root): a two-field fixed
// container Merkleizes its two 32-byte-rooted fields directly.
func (c Checkpoint) HashTreeRoot() [32]byte {
	epochLeaf := (Uint64{}).HashTreeRoot(c.Epoch)
	return hashutil.HashTwo(epochLeaf, c.Root)
}

// ToTree interns Checkpoint as a 2-field ContainerView.
func (c Checkpoint) ToTree(pool *nodepool.Pool) *treeview.ContainerView {
	epochLeaf := pool.CreateLeafFromUint(c.Epoch)
	rootLeaf := pool.CreateLeaf(c.Root)
	branch := pool.CreateBranch(epochLeaf, rootLeaf)
	pool.Unref(epochLeaf)
	pool.Unref(rootLeaf)
	return treeview.NewContainerView(pool, branch, 2)
}

// CheckpointFromTree reads a Checkpoint back out of a 2-field ContainerView.
func CheckpointFromTree(view *treeview.ContainerView) Checkpoint {
	epochRoot := view.GetBasic(0)
	root := view.GetBasic(1)
	return Checkpoint{
		Epoch: binary.LittleEndian.Uint64(epochRoot[:8]),
		Root:  root,
	}
}
