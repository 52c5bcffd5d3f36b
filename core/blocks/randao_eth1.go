package blocks

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/pubkeyindex"
	"github.com/eth2-core/beacon-engine/core/state"
	"github.com/eth2-core/beacon-engine/crypto/bls"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// computeForkDataRoot hash-tree-roots the two-field ForkData container
// {current_version, genesis_validators_root} used by compute_domain.
func computeForkDataRoot(currentVersion [4]byte, genesisValidatorsRoot [32]byte) [32]byte {
	var versionLeaf [32]byte
	copy(versionLeaf[:4], currentVersion[:])
	return hashutil.HashTwo(versionLeaf, genesisValidatorsRoot)
}

// computeDomain builds a full 32-byte signing domain: the 4-byte domain
// type followed by the first 28 bytes of the fork-data root, so the
// resulting signature domain is bound to this chain's genesis (via
// genesisValidatorsRoot) and current fork version, not just the domain
// type.
func computeDomain(domainType uint32, currentVersion [4]byte, genesisValidatorsRoot [32]byte) [32]byte {
	forkDataRoot := computeForkDataRoot(currentVersion, genesisValidatorsRoot)
	var domain [32]byte
	binary.LittleEndian.PutUint32(domain[:4], domainType)
	copy(domain[4:], forkDataRoot[:28])
	return domain
}

// signingRoot is compute_signing_root(data, domain): hash_two of the signed
// value's root and the full signing domain.
func signingRoot(dataRoot [32]byte, domain [32]byte) [32]byte {
	return hashutil.HashTwo(dataRoot, domain)
}

// ProcessRandao verifies (when verifySignatures) the proposer's RANDAO
// reveal and XORs its hash into the epoch's randao mix (spec §4.8).
func ProcessRandao(s *state.BeaconState, idx *pubkeyindex.Index, cfg *params.BeaconChainConfig, block BeaconBlock, verifySignatures bool) error {
	epoch := computeEpochAtSlot(cfg, s.Slot)

	if verifySignatures {
		pk, ok := idx.Get(block.ProposerIndex)
		if !ok {
			return bserrors.ErrInvalidPublicKey
		}
		sig, err := bls.SignatureFromBytes(block.Body.RandaoReveal[:])
		if err != nil {
			return bserrors.ErrInvalidRandaoSignature
		}
		var epochLeaf [32]byte
		binary.LittleEndian.PutUint64(epochLeaf[:8], epoch)
		domain := computeDomain(cfg.DomainRandao, s.ForkData.CurrentVersion, s.GenesisValidatorsRoot)
		root := signingRoot(epochLeaf, domain)
		if !sig.Verify(pk, root[:]) {
			return bserrors.ErrInvalidRandaoSignature
		}
	}

	mixIndex := epoch % cfg.EpochsPerHistoricalVector
	reveal := sha256.Sum256(block.Body.RandaoReveal[:])
	var mixed [32]byte
	for i := range mixed {
		mixed[i] = s.RandaoMixes[mixIndex][i] ^ reveal[i]
	}
	s.RandaoMixes[mixIndex] = mixed
	return nil
}

// ProcessEth1Data appends the block's eth1 vote and adopts it as
// state.Eth1Data once it holds a strict majority of the voting period
// (spec §4.8).
func ProcessEth1Data(s *state.BeaconState, cfg *params.BeaconChainConfig, vote state.Eth1Data) {
	s.Eth1DataVotes = append(s.Eth1DataVotes, vote)

	votingPeriodSlots := cfg.SlotsPerEpoch * 64 // EPOCHS_PER_ETH1_VOTING_PERIOD
	count := 0
	for _, v := range s.Eth1DataVotes {
		if v == vote {
			count++
		}
	}
	if uint64(count)*2 > votingPeriodSlots {
		s.Eth1Data = vote
	}
}
