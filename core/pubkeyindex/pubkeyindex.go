// Package pubkeyindex implements PubkeyIndex (spec §4.5): the bidirectional
// mapping between a 48-byte compressed validator public key and its dense
// u32 index, plus the deserialized-PublicKey cache that makes repeated BLS
// verification avoid re-parsing compressed points.
package pubkeyindex

import (
	"encoding/binary"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/eth2-core/beacon-engine/crypto/bls"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

const pubkeyLength = 48

// deserializedCacheSize bounds the LRU of already-uncompressed PublicKey
// objects fronting index2pubkey, per SPEC_FULL's PubkeyIndex addition.
const deserializedCacheSize = 1 << 16

// Index is the bidirectional pubkey<->validator-index map (spec §3/§4.5).
// Concurrency contract: shared-read, single-writer — reads during block
// processing take no lock; writes (bootstrap, deposit processing) take
// writeMu.
type Index struct {
	writeMu sync.Mutex

	pubkey2index map[[pubkeyLength]byte]uint32
	index2pubkey [][pubkeyLength]byte

	deserialized *lru.Cache
}

// New returns an empty, initialized Index.
func New() *Index {
	cache, err := lru.New(deserializedCacheSize)
	if err != nil {
		panic(err)
	}
	return &Index{
		pubkey2index: make(map[[pubkeyLength]byte]uint32),
		deserialized: cache,
	}
}

// EnsureCapacity grows the backing vector so n indices fit without further
// reallocation. A pure hint; Set still grows lazily if called past n.
func (idx *Index) EnsureCapacity(n int) {
	if cap(idx.index2pubkey) >= n {
		return
	}
	grown := make([][pubkeyLength]byte, len(idx.index2pubkey), n)
	copy(grown, idx.index2pubkey)
	idx.index2pubkey = grown
}

// Set inserts (index, pubkeyBytes), validating length and deserializability.
// index2pubkey grows to index+1 with zero-filled trailing slots if needed
// (P2); only 0..index are semantically valid until they are themselves Set.
func (idx *Index) Set(index uint32, pubkeyBytes []byte) error {
	if len(pubkeyBytes) != pubkeyLength {
		return bserrors.ErrInvalidPubkeyLength
	}
	pk, err := bls.PublicKeyFromBytes(pubkeyBytes)
	if err != nil {
		return errors.Wrap(bserrors.ErrDeserializationFailed, err.Error())
	}

	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	var key [pubkeyLength]byte
	copy(key[:], pubkeyBytes)

	if int(index) >= len(idx.index2pubkey) {
		grown := make([][pubkeyLength]byte, index+1)
		copy(grown, idx.index2pubkey)
		idx.index2pubkey = grown
	}
	idx.index2pubkey[index] = key
	idx.pubkey2index[key] = index
	idx.deserialized.Add(key, pk)
	return nil
}

// Get returns the deserialized public key at index, or (nil, false) if the
// index has never been Set (not-found is not an error, per §4.5).
func (idx *Index) Get(index uint32) (*bls.PublicKey, bool) {
	if int(index) >= len(idx.index2pubkey) {
		return nil, false
	}
	key := idx.index2pubkey[index]
	if key == ([pubkeyLength]byte{}) {
		return nil, false
	}
	if v, ok := idx.deserialized.Get(key); ok {
		return v.(*bls.PublicKey), true
	}
	pk, err := bls.PublicKeyFromBytes(key[:])
	if err != nil {
		return nil, false
	}
	idx.deserialized.Add(key, pk)
	return pk, true
}

// GetIndex returns the validator index for pubkeyBytes, or an error if the
// input is not exactly 48 bytes (InvalidPubkeyLength is an error; "not
// found" is expressed as the bool return, not an error).
func (idx *Index) GetIndex(pubkeyBytes []byte) (uint32, bool, error) {
	if len(pubkeyBytes) != pubkeyLength {
		return 0, false, bserrors.ErrInvalidPubkeyLength
	}
	var key [pubkeyLength]byte
	copy(key[:], pubkeyBytes)
	i, ok := idx.pubkey2index[key]
	return i, ok, nil
}

// Size returns the number of populated slots (len(index2pubkey)), matching
// §4.5's size().
func (idx *Index) Size() uint32 {
	return uint32(len(idx.index2pubkey))
}

const pkixMagic = "PKIX"

// Save writes the index through write in the bit-exact format described in
// spec §6: "PKIX" magic, length, capacity, an opaque map-metadata region,
// then length compressed 48-byte pubkeys in index order.
//
// This implementation's map-metadata region is a simple length-prefixed
// dump of every (pubkey, index) pair rather than a hash-table-internal
// memory image (the teacher's Go map has no stable on-disk layout to dump,
// unlike a source language with an open-addressing table the file format
// was originally designed around); Load reconstructs pubkey2index from that
// region instead of depending on map internals. The file is therefore only
// portable between instances of this package, matching the format note
// "the file is not cross-implementation portable".
func (idx *Index) Save(write func([]byte) error) error {
	length := uint32(len(idx.index2pubkey))
	capacity := uint32(cap(idx.index2pubkey))

	header := make([]byte, 12)
	copy(header[0:4], pkixMagic)
	binary.LittleEndian.PutUint32(header[4:8], length)
	binary.LittleEndian.PutUint32(header[8:12], capacity)
	if err := write(header); err != nil {
		return err
	}

	meta := make([]byte, 4+int(length)*(pubkeyLength+4))
	binary.LittleEndian.PutUint32(meta[0:4], length)
	off := 4
	for i := uint32(0); i < length; i++ {
		pk := idx.index2pubkey[i]
		copy(meta[off:off+pubkeyLength], pk[:])
		off += pubkeyLength
		binary.LittleEndian.PutUint32(meta[off:off+4], i)
		off += 4
	}
	if err := write(meta); err != nil {
		return err
	}

	for i := uint32(0); i < length; i++ {
		pk, ok := idx.Get(i)
		if !ok {
			return errors.Wrap(bserrors.ErrInvalidPubkeyIndexFile, "missing deserialized pubkey during save")
		}
		if err := write(pk.Compress()); err != nil {
			return err
		}
	}
	return nil
}

// Load reconstructs an Index from the byte stream produced by Save.
func Load(data []byte) (*Index, error) {
	if len(data) < 12 || string(data[0:4]) != pkixMagic {
		return nil, bserrors.ErrInvalidPubkeyIndexFile
	}
	length := binary.LittleEndian.Uint32(data[4:8])
	capacity := binary.LittleEndian.Uint32(data[8:12])
	if capacity < length {
		return nil, bserrors.ErrInvalidPubkeyIndexFile
	}

	metaSize := 4 + int(length)*(pubkeyLength+4)
	if len(data) < 12+metaSize {
		return nil, bserrors.ErrInvalidPubkeyIndexFile
	}
	meta := data[12 : 12+metaSize]
	metaLength := binary.LittleEndian.Uint32(meta[0:4])
	if metaLength != length {
		return nil, bserrors.ErrInvalidPubkeyIndexFile
	}

	pubkeysStart := 12 + metaSize
	wantLen := pubkeysStart + int(length)*pubkeyLength
	if len(data) != wantLen {
		return nil, bserrors.ErrInvalidPubkeyIndexFile
	}

	idx := New()
	idx.EnsureCapacity(int(capacity))

	// The metadata region is redundant with the trailing pubkey dump once
	// Set() is called for every index below (which rebuilds pubkey2index
	// from scratch); it exists on disk only to preserve the bit-exact
	// layout described in spec §6.
	_ = meta

	for i := uint32(0); i < length; i++ {
		start := pubkeysStart + int(i)*pubkeyLength
		raw := data[start : start+pubkeyLength]
		if err := idx.Set(i, raw); err != nil {
			return nil, errors.Wrap(bserrors.ErrInvalidPubkeyIndexFile, err.Error())
		}
	}
	return idx, nil
}
