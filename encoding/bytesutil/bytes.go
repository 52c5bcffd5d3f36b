// Package bytesutil provides the small fixed-width byte/uint conversions
// used throughout SSZ serialization and tree construction.
package bytesutil

import "encoding/binary"

// Bytes4 returns the little-endian 4-byte encoding of x.
func Bytes4(x uint64) []byte {
	return ToBytes(x, 4)
}

// Bytes8 returns the little-endian 8-byte encoding of x.
func Bytes8(x uint64) []byte {
	return ToBytes(x, 8)
}

// ToBytes returns the little-endian encoding of x truncated/padded to length.
func ToBytes(x uint64, length int) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	if length <= 8 {
		return b[:length]
	}
	out := make([]byte, length)
	copy(out, b)
	return out
}

// FromBytes8 decodes a little-endian 8-byte (or shorter) slice into a uint64.
func FromBytes8(b []byte) uint64 {
	padded := make([]byte, 8)
	copy(padded, b)
	return binary.LittleEndian.Uint64(padded)
}

// FromBytes4 decodes a little-endian 4-byte (or shorter) slice into a uint64.
func FromBytes4(b []byte) uint64 {
	padded := make([]byte, 4)
	copy(padded, b)
	return uint64(binary.LittleEndian.Uint32(padded))
}

// ToBytes32 copies (zero-padding or truncating) b into a fixed [32]byte.
func ToBytes32(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}

// ToBytes48 copies (zero-padding or truncating) b into a fixed [48]byte,
// the width of a compressed BLS12-381 G1 point.
func ToBytes48(b []byte) [48]byte {
	var out [48]byte
	copy(out[:], b)
	return out
}

// ToBytes96 copies (zero-padding or truncating) b into a fixed [96]byte,
// the width of a BLS12-381 G2 signature.
func ToBytes96(b []byte) [96]byte {
	var out [96]byte
	copy(out[:], b)
	return out
}

// SetBit sets bit i (LSB-first within the byte) of bitfield and returns it.
func SetBit(bitfield []byte, i int) []byte {
	bitfield[i/8] |= 1 << uint(i%8)
	return bitfield
}

// BitAt reports whether bit i (LSB-first within the byte) of bitfield is set.
func BitAt(bitfield []byte, i int) bool {
	return bitfield[i/8]&(1<<uint(i%8)) != 0
}
