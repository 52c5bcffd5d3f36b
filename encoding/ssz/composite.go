package ssz

import (
	"encoding/binary"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// BitVector is the SSZ `Bitvector[N]` type: a fixed-length bit string packed
// into ceil(N/8) bytes. Wire layout and hash-tree-root match ByteVector over
// the same packed bytes; TreeView exposes bit-level access via
// treeview.BitVectorView, which this type wraps for the value<->tree half.
type BitVector struct {
	N int
}

func (b BitVector) byteLen() int { return (b.N + 7) / 8 }

// Describe returns a debug label for log/trace fields.
func (b BitVector) Describe() string { return "Bitvector[N]" }

// Default returns the all-zero packed bit vector.
func (b BitVector) Default() []byte { return make([]byte, b.byteLen()) }

// SerializeSize is always ceil(N/8).
func (b BitVector) SerializeSize([]byte) int { return b.byteLen() }

// DeserializeFrom validates the input is exactly ceil(N/8) bytes.
func (b BitVector) DeserializeFrom(data []byte) ([]byte, error) {
	if len(data) != b.byteLen() {
		return nil, bserrors.ErrInvalidLength
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// HashTreeRoot merkleizes the packed bytes exactly like ByteVector.
func (b BitVector) HashTreeRoot(packed []byte) [32]byte {
	chunks := chunkify(packed, b.byteLen())
	return hashutil.Merkleize(chunks, len(chunks))
}

// ToTree interns the packed bits as a treeview.BitVectorView.
func (b BitVector) ToTree(pool *nodepool.Pool, packed []byte) *treeview.BitVectorView {
	v := treeview.NewEmptyBitVectorView(pool, b.N)
	for i := 0; i < b.N; i++ {
		byteIdx, bitIdx := i/8, uint(i%8)
		if byteIdx < len(packed) && packed[byteIdx]&(1<<bitIdx) != 0 {
			v.SetBit(i, true)
		}
	}
	v.Commit()
	return v
}

// FromTree reads the packed bits back out of a BitVectorView.
func (b BitVector) FromTree(v *treeview.BitVectorView) []byte {
	out := make([]byte, b.byteLen())
	for i := 0; i < b.N; i++ {
		if v.BitAt(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// BitList is the SSZ `Bitlist[N]` type: a variable-length bit string bounded
// by N bits, wire-encoded with a trailing length-delimiter bit (the same
// layout treeview.FromBitlist/ToBitlist already speak for go-bitfield
// values; this wraps that pair behind the standard descriptor surface).
type BitList struct {
	Limit int // max bit count
}

// Describe returns a debug label for log/trace fields.
func (b BitList) Describe() string { return "Bitlist[N]" }

// Default returns an empty bitlist (zero bits set).
func (b BitList) Default() []bool { return nil }

// Serialize writes the delimiter-bit wire form: ceil((len(bits)+1)/8) bytes.
func (b BitList) Serialize(bits []bool) []byte {
	out := make([]byte, len(bits)/8+1)
	for i, set := range bits {
		if set {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	out[len(bits)/8] |= 1 << uint(len(bits)%8)
	return out
}

// DeserializeFrom strips the trailing delimiter bit and expands the rest
// into a []bool, validating the bit count does not exceed Limit.
func (b BitList) DeserializeFrom(data []byte) ([]bool, error) {
	if len(data) == 0 {
		return nil, bserrors.ErrUnexpectedRemainder
	}
	last := data[len(data)-1]
	if last == 0 {
		return nil, bserrors.ErrUnexpectedRemainder
	}
	msb := 7
	for msb >= 0 && last&(1<<uint(msb)) == 0 {
		msb--
	}
	length := (len(data)-1)*8 + msb
	if length > b.Limit {
		return nil, bserrors.ErrInvalidListSize
	}
	out := make([]bool, length)
	for i := range out {
		out[i] = data[i/8]&(1<<uint(i%8)) != 0
	}
	return out, nil
}

// HashTreeRoot merkleizes up to ceil(Limit/256) chunks, then mixes in
// length, matching a bitlist's variable-container-like HTR.
func (b BitList) HashTreeRoot(bits []bool) [32]byte {
	packed := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	limitChunks := (b.Limit + 255) / 256
	chunks := chunkify(packed, (b.Limit+7)/8)
	root := hashutil.Merkleize(chunks, limitChunks)
	return hashutil.MixInLength(root, uint64(len(bits)))
}

// ToTree interns bits as a treeview.BitListView, reusing
// treeview.FromBitlist (which already knows how to lay out a
// delimiter-terminated go-bitfield value into chunks) rather than growing
// one bit at a time.
func (b BitList) ToTree(pool *nodepool.Pool, bits []bool) *treeview.BitListView {
	return treeview.FromBitlist(pool, b.Limit, bitfield.Bitlist(b.Serialize(bits)))
}

// FromTree reads the bit values back out of a BitListView.
func (b BitList) FromTree(v *treeview.BitListView) []bool {
	out := make([]bool, v.Length())
	for i := range out {
		out[i], _ = v.BitAt(i)
	}
	return out
}

// FixedVector is the SSZ `Vector[basic, N]` type: a fixed-length vector of
// packed basic elements (uint64/uint16-shaped), wrapping
// treeview.BasicVectorView.
type FixedVector struct {
	Length int
	Codec  treeview.ElementCodec
}

func (f FixedVector) elementByteWidth() int { return 32 / f.Codec.ElementsPerChunk }

// Describe returns a debug label for log/trace fields.
func (f FixedVector) Describe() string { return "Vector[basic, N]" }

// Default returns a zero-filled vector of Length elements.
func (f FixedVector) Default() []uint64 { return make([]uint64, f.Length) }

// SerializeSize is always Length * elementByteWidth.
func (f FixedVector) SerializeSize([]uint64) int { return f.Length * f.elementByteWidth() }

// Serialize packs every element at its fixed byte width, in order.
func (f FixedVector) Serialize(values []uint64) []byte {
	width := f.elementByteWidth()
	out := make([]byte, f.Length*width)
	for i := 0; i < f.Length && i < len(values); i++ {
		var chunk [32]byte
		f.Codec.Encode(&chunk, 0, values[i])
		copy(out[i*width:(i+1)*width], chunk[:width])
	}
	return out
}

// DeserializeFrom validates the input is exactly Length*width bytes.
func (f FixedVector) DeserializeFrom(data []byte) ([]uint64, error) {
	width := f.elementByteWidth()
	if len(data) != f.Length*width {
		return nil, bserrors.ErrInvalidLength
	}
	out := make([]uint64, f.Length)
	for i := range out {
		var chunk [32]byte
		copy(chunk[:width], data[i*width:(i+1)*width])
		out[i] = f.Codec.Decode(chunk, 0)
	}
	return out, nil
}

// HashTreeRoot merkleizes the packed elements into ceil(Length/perChunk)
// chunks.
func (f FixedVector) HashTreeRoot(values []uint64) [32]byte {
	chunkCount := (f.Length + f.Codec.ElementsPerChunk - 1) / f.Codec.ElementsPerChunk
	chunks := make([][32]byte, chunkCount)
	for i, v := range values {
		if i >= f.Length {
			break
		}
		chunk, offset := i/f.Codec.ElementsPerChunk, i%f.Codec.ElementsPerChunk
		f.Codec.Encode(&chunks[chunk], offset, v)
	}
	return hashutil.Merkleize(chunks, chunkCount)
}

// ToTree interns values as a treeview.BasicVectorView.
func (f FixedVector) ToTree(pool *nodepool.Pool, values []uint64) *treeview.BasicVectorView {
	v := treeview.NewEmptyBasicVectorView(pool, f.Length, f.Codec)
	for i, val := range values {
		if i >= f.Length {
			break
		}
		v.Set(i, val)
	}
	v.Commit()
	return v
}

// FromTree reads every element back out of a BasicVectorView.
func (f FixedVector) FromTree(v *treeview.BasicVectorView) []uint64 {
	out := make([]uint64, f.Length)
	v.GetAll(out)
	return out
}

// FixedList is the SSZ `List[basic, N]` type: a variable-length (bounded by
// Limit) list of packed basic elements, wrapping treeview.BasicListView.
type FixedList struct {
	Limit int
	Codec treeview.ElementCodec
}

func (f FixedList) elementByteWidth() int { return 32 / f.Codec.ElementsPerChunk }

// Describe returns a debug label for log/trace fields.
func (f FixedList) Describe() string { return "List[basic, N]" }

// Default returns an empty list.
func (f FixedList) Default() []uint64 { return nil }

// Serialize packs every present element at its fixed byte width.
func (f FixedList) Serialize(values []uint64) []byte {
	width := f.elementByteWidth()
	out := make([]byte, len(values)*width)
	for i, v := range values {
		var chunk [32]byte
		f.Codec.Encode(&chunk, 0, v)
		copy(out[i*width:(i+1)*width], chunk[:width])
	}
	return out
}

// DeserializeFrom splits data into Limit-bounded fixed-width elements.
func (f FixedList) DeserializeFrom(data []byte) ([]uint64, error) {
	width := f.elementByteWidth()
	if width == 0 || len(data)%width != 0 {
		return nil, bserrors.ErrUnexpectedRemainder
	}
	n := len(data) / width
	if n > f.Limit {
		return nil, bserrors.ErrInvalidListSize
	}
	out := make([]uint64, n)
	for i := range out {
		var chunk [32]byte
		copy(chunk[:width], data[i*width:(i+1)*width])
		out[i] = f.Codec.Decode(chunk, 0)
	}
	return out, nil
}

// HashTreeRoot merkleizes up to ceil(Limit/perChunk) chunks, then mixes in
// length.
func (f FixedList) HashTreeRoot(values []uint64) [32]byte {
	limitChunks := (f.Limit + f.Codec.ElementsPerChunk - 1) / f.Codec.ElementsPerChunk
	chunkCount := (len(values) + f.Codec.ElementsPerChunk - 1) / f.Codec.ElementsPerChunk
	chunks := make([][32]byte, chunkCount)
	for i, v := range values {
		chunk, offset := i/f.Codec.ElementsPerChunk, i%f.Codec.ElementsPerChunk
		f.Codec.Encode(&chunks[chunk], offset, v)
	}
	root := hashutil.Merkleize(chunks, limitChunks)
	return hashutil.MixInLength(root, uint64(len(values)))
}

// ToTree interns values as a treeview.BasicListView.
func (f FixedList) ToTree(pool *nodepool.Pool, values []uint64) *treeview.BasicListView {
	v := treeview.NewEmptyBasicListView(pool, f.Limit, f.Codec)
	for _, val := range values {
		_ = v.Push(val)
	}
	v.Commit()
	return v
}

// FromTree reads every element back out of a BasicListView.
func (f FixedList) FromTree(v *treeview.BasicListView) []uint64 {
	out := make([]uint64, v.Length())
	for i := range out {
		out[i], _ = v.Get(i)
	}
	return out
}

// ListElement is the per-element vtable VariableList (and, by field,
// FixedContainer/VariableContainer) use so the generic list/container
// plumbing never needs to know T's concrete Go shape. Fixed reports whether
// every instance of T serializes to the same FixedSize; Serialize/
// Deserialize/HashTreeRoot operate purely on wire bytes and tree roots,
// while NewView/BuildView/ReadView bridge T to/from a treeview.Committer
// sub-view.
type ListElement[T any] struct {
	Fixed        bool
	FixedSize    int
	Serialize    func(T) []byte
	Deserialize  func([]byte) (T, error)
	HashTreeRoot func(T) [32]byte
	NewView      func(pool *nodepool.Pool, id nodepool.NodeId) treeview.Committer
	BuildView    func(pool *nodepool.Pool, value T) treeview.Committer
	ReadView     func(view treeview.Committer) T
}

// VariableList is the SSZ `List[T, N]` type for composite or variable-size
// elements: each element serializes itself independently. The wire
// encoding is an offset table followed by concatenated element bytes when
// elements vary in size, or a flat concatenation when Elem.Fixed holds (the
// offset table degenerates to nothing in that case, exactly like a list of
// fixed-size containers in the consensus spec).
type VariableList[T any] struct {
	Limit int
	Elem  ListElement[T]
}

// Describe returns a debug label for log/trace fields.
func (l VariableList[T]) Describe() string { return "List[composite, N]" }

// Default returns an empty list.
func (l VariableList[T]) Default() []T { return nil }

// Serialize writes the list's wire form (offset-table + bodies, or a flat
// concatenation when every element is fixed-size).
func (l VariableList[T]) Serialize(values []T) []byte {
	if l.Elem.Fixed {
		out := make([]byte, 0, len(values)*l.Elem.FixedSize)
		for _, v := range values {
			out = append(out, l.Elem.Serialize(v)...)
		}
		return out
	}
	bodies := make([][]byte, len(values))
	for i, v := range values {
		bodies[i] = l.Elem.Serialize(v)
	}
	fixedLen := 4 * len(values)
	out := make([]byte, 0, fixedLen)
	offset := uint32(fixedLen)
	for _, body := range bodies {
		var off [4]byte
		binary.LittleEndian.PutUint32(off[:], offset)
		out = append(out, off[:]...)
		offset += uint32(len(body))
	}
	for _, body := range bodies {
		out = append(out, body...)
	}
	return out
}

// DeserializeFrom parses the wire form Serialize produces, validating the
// element count does not exceed Limit.
func (l VariableList[T]) DeserializeFrom(data []byte) ([]T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if l.Elem.Fixed {
		if l.Elem.FixedSize == 0 || len(data)%l.Elem.FixedSize != 0 {
			return nil, bserrors.ErrUnexpectedRemainder
		}
		n := len(data) / l.Elem.FixedSize
		if n > l.Limit {
			return nil, bserrors.ErrInvalidListSize
		}
		out := make([]T, n)
		for i := range out {
			v, err := l.Elem.Deserialize(data[i*l.Elem.FixedSize : (i+1)*l.Elem.FixedSize])
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	if len(data) < 4 {
		return nil, bserrors.ErrUnexpectedRemainder
	}
	firstOffset := binary.LittleEndian.Uint32(data[:4])
	if firstOffset%4 != 0 {
		return nil, bserrors.ErrUnexpectedRemainder
	}
	n := int(firstOffset / 4)
	if n > l.Limit {
		return nil, bserrors.ErrInvalidListSize
	}
	offsets := make([]int, n+1)
	for i := 0; i < n; i++ {
		if (i+1)*4 > len(data) {
			return nil, bserrors.ErrUnexpectedRemainder
		}
		offsets[i] = int(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	offsets[n] = len(data)
	out := make([]T, n)
	for i := 0; i < n; i++ {
		start, end := offsets[i], offsets[i+1]
		if start < 0 || end > len(data) || start > end {
			return nil, bserrors.ErrUnexpectedRemainder
		}
		v, err := l.Elem.Deserialize(data[start:end])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// HashTreeRoot merkleizes each element's own root up to Limit leaves, then
// mixes in length. This is uniform regardless of Elem.Fixed: a composite
// list's Merkleization never depends on wire-level offset encoding.
func (l VariableList[T]) HashTreeRoot(values []T) [32]byte {
	leaves := make([][32]byte, len(values))
	for i, v := range values {
		leaves[i] = l.Elem.HashTreeRoot(v)
	}
	root := hashutil.Merkleize(leaves, l.Limit)
	return hashutil.MixInLength(root, uint64(len(values)))
}

// ToTree interns values as a treeview.CompositeListView.
func (l VariableList[T]) ToTree(pool *nodepool.Pool, values []T) *treeview.CompositeListView {
	newElement := func(id nodepool.NodeId) treeview.Committer { return l.Elem.NewView(pool, id) }
	view := treeview.NewEmptyCompositeListView(pool, l.Limit, newElement)
	for _, v := range values {
		_ = view.Append(l.Elem.BuildView(pool, v))
	}
	view.Commit()
	return view
}

// FromTree reads every element back out of a CompositeListView.
func (l VariableList[T]) FromTree(view *treeview.CompositeListView) []T {
	out := make([]T, view.Length())
	for i := range out {
		c, _ := view.Get(i)
		out[i] = l.Elem.ReadView(c)
	}
	return out
}

// Field is the common currency FixedContainer and VariableContainer operate
// on: one container field (or, recursively, one VariableList/FixedList
// instance), described purely by its wire shape and Merkleization so the
// container plumbing never needs to know the field's concrete Go type.
// IsVariable reports whether the field's serialized size varies by value
// (driving whether it needs an offset word); FixedSize is meaningful only
// when !IsVariable().
type Field struct {
	IsVariable   bool
	FixedSize    int
	Serialize    func() []byte
	Deserialize  func([]byte) error
	HashTreeRoot func() [32]byte
}

// FixedContainer is the SSZ fixed-size container: every field here is
// itself fixed-size, so Serialize is a flat concatenation and no offset
// table is needed (spec §4.3 FixedContainer).
type FixedContainer struct {
	Fields []Field
}

// Serialize concatenates every field's own wire bytes in order.
func (c FixedContainer) Serialize() []byte {
	var out []byte
	for _, f := range c.Fields {
		out = append(out, f.Serialize()...)
	}
	return out
}

// Deserialize splits data into each field's FixedSize-byte window in order.
func (c FixedContainer) Deserialize(data []byte) error {
	off := 0
	for _, f := range c.Fields {
		sz := f.FixedSize
		if off+sz > len(data) {
			return bserrors.ErrUnexpectedRemainder
		}
		if err := f.Deserialize(data[off : off+sz]); err != nil {
			return err
		}
		off += sz
	}
	if off != len(data) {
		return bserrors.ErrUnexpectedRemainder
	}
	return nil
}

// HashTreeRoot merkleizes every field's own root, one leaf per field,
// exactly like Checkpoint's hand-rolled two-field case generalized to N
// fields.
func (c FixedContainer) HashTreeRoot() [32]byte {
	leaves := make([][32]byte, len(c.Fields))
	for i, f := range c.Fields {
		leaves[i] = f.HashTreeRoot()
	}
	return hashutil.Merkleize(leaves, len(leaves))
}

// ToTree interns the container as a treeview.ContainerView, one leaf per
// field.
func (c FixedContainer) ToTree(pool *nodepool.Pool) *treeview.ContainerView {
	view := treeview.NewEmptyContainer(pool, len(c.Fields))
	for i, f := range c.Fields {
		view.SetBasic(i, f.HashTreeRoot())
	}
	view.Commit()
	return view
}

// VariableContainer is the SSZ variable-size container: at least one field
// is variable-size, so Serialize writes a fixed-size head (each variable
// field contributing a 4-byte offset in place of its bytes) followed by the
// variable fields' bodies in field order (spec §4.3 VariableContainer).
// Merkleization is identical to FixedContainer: one leaf per field
// regardless of wire shape.
type VariableContainer struct {
	Fields []Field
}

// Serialize writes the offset-prefixed wire form.
func (c VariableContainer) Serialize() []byte {
	head := make([][]byte, len(c.Fields))
	headLen := 0
	for i, f := range c.Fields {
		if f.IsVariable {
			head[i] = make([]byte, 4)
			headLen += 4
		} else {
			head[i] = f.Serialize()
			headLen += len(head[i])
		}
	}
	var tail []byte
	offset := uint32(headLen)
	for i, f := range c.Fields {
		if !f.IsVariable {
			continue
		}
		binary.LittleEndian.PutUint32(head[i], offset)
		body := f.Serialize()
		tail = append(tail, body...)
		offset += uint32(len(body))
	}
	out := make([]byte, 0, headLen+len(tail))
	for _, h := range head {
		out = append(out, h...)
	}
	out = append(out, tail...)
	return out
}

// Deserialize parses the offset-prefixed wire form Serialize produces.
// Offsets must be non-decreasing and land within data, matching the
// consensus-spec variable-container decode discipline.
func (c VariableContainer) Deserialize(data []byte) error {
	n := len(c.Fields)
	offsets := make([]int, 0, n)
	varIdx := make([]int, 0, n)
	pos := 0
	for i, f := range c.Fields {
		if f.IsVariable {
			if pos+4 > len(data) {
				return bserrors.ErrUnexpectedRemainder
			}
			offsets = append(offsets, int(binary.LittleEndian.Uint32(data[pos:pos+4])))
			varIdx = append(varIdx, i)
			pos += 4
			continue
		}
		sz := f.FixedSize
		if pos+sz > len(data) {
			return bserrors.ErrUnexpectedRemainder
		}
		if err := f.Deserialize(data[pos : pos+sz]); err != nil {
			return err
		}
		pos += sz
	}
	offsets = append(offsets, len(data))
	for j, idx := range varIdx {
		start, end := offsets[j], offsets[j+1]
		if start < 0 || end > len(data) || start > end {
			return bserrors.ErrUnexpectedRemainder
		}
		if err := c.Fields[idx].Deserialize(data[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// HashTreeRoot merkleizes every field's own root, one leaf per field.
func (c VariableContainer) HashTreeRoot() [32]byte {
	leaves := make([][32]byte, len(c.Fields))
	for i, f := range c.Fields {
		leaves[i] = f.HashTreeRoot()
	}
	return hashutil.Merkleize(leaves, len(leaves))
}

// ToTree interns the container as a treeview.ContainerView, one leaf per
// field (TreeView addresses fields by gindex regardless of wire variability
// — offsets are purely a serialization concern).
func (c VariableContainer) ToTree(pool *nodepool.Pool) *treeview.ContainerView {
	view := treeview.NewEmptyContainer(pool, len(c.Fields))
	for i, f := range c.Fields {
		view.SetBasic(i, f.HashTreeRoot())
	}
	view.Commit()
	return view
}
