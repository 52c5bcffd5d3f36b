// Package helpers implements the epoch-boundary derived-state helpers used
// by block and epoch processing: shuffling, proposer/committee assignment,
// and the caches that make repeated lookups cheap across a slot.
package helpers

import (
	"crypto/sha256"
	"encoding/binary"

	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// MaxShuffleRounds is the largest round count InnerShuffleList accepts,
// matching SH4's InvalidRoundsSize bound.
const MaxShuffleRounds = 255

// InnerShuffleList performs the swap-or-not shuffle (credited to
// protolambda) over a copy of input, either forwards (shuffling, dir=true)
// or backwards (unshuffling, dir=false). It is reversible:
// InnerShuffleList(InnerShuffleList(xs, seed, r, true), seed, r, false) == xs
// for every r in 0..=255. rounds == 0 or len(input) <= 1 is a no-op.
func InnerShuffleList(input []uint64, seed [32]byte, rounds uint8, forwards bool) ([]uint64, error) {
	n := uint64(len(input))
	out := make([]uint64, len(input))
	copy(out, input)
	if rounds == 0 || n <= 1 {
		return out, nil
	}

	var buf [37]byte
	copy(buf[0:32], seed[:])

	round := uint8(0)
	if !forwards {
		round = rounds - 1
	}

	for {
		buf[32] = round
		pivotHash := sha256.Sum256(buf[:33])
		pivot := binary.LittleEndian.Uint64(pivotHash[0:8]) % n

		var source [32]byte

		// Pass 1: mirror [0, (pivot+1)/2) around pivot.
		mirror1 := (pivot + 1) / 2
		for i, j := uint64(0), pivot; i < mirror1; i, j = i+1, j-1 {
			if i == 0 || j&0xff == 0xff {
				binary.LittleEndian.PutUint32(buf[33:37], uint32(j>>8))
				source = sha256.Sum256(buf[:37])
			}
			byteV := source[(j&0xff)>>3]
			bit := (byteV >> (j & 0x7)) & 1
			if bit == 1 {
				out[i], out[j] = out[j], out[i]
			}
		}

		// Pass 2: mirror (pivot, N) around end = N-1.
		end := n - 1
		mirror2 := (pivot + n + 1) / 2
		for i, j := pivot+1, end; i < mirror2; i, j = i+1, j-1 {
			if i == pivot+1 || j&0xff == 0xff {
				binary.LittleEndian.PutUint32(buf[33:37], uint32(j>>8))
				source = sha256.Sum256(buf[:37])
			}
			byteV := source[(j&0xff)>>3]
			bit := (byteV >> (j & 0x7)) & 1
			if bit == 1 {
				out[i], out[j] = out[j], out[i]
			}
		}

		if forwards {
			round++
			if round == rounds {
				break
			}
		} else {
			if round == 0 {
				break
			}
			round--
		}
	}

	return out, nil
}

// ValidateShuffleRounds returns ErrInvalidRoundsSize if rounds exceeds
// MaxShuffleRounds, matching SH4.
func ValidateShuffleRounds(rounds int) error {
	if rounds < 0 || rounds > MaxShuffleRounds {
		return bserrors.ErrInvalidRoundsSize
	}
	return nil
}
