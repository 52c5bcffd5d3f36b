// Package params defines the protocol constants consumed by every layer of
// the state-transition engine: slot/epoch timing, fork epochs, committee
// sizing, and the reward/penalty quotients used during epoch processing.
package params

import "sync"

// ForkSeq orders the seven protocol forks this engine understands. Treated
// as a monotonic sequence so callers can write `fork.Gte(Altair)` guards
// instead of repeating fork-by-fork switches everywhere.
type ForkSeq int

const (
	Phase0 ForkSeq = iota
	Altair
	Bellatrix
	Capella
	Deneb
	Electra
	Fulu
)

// Gte reports whether seq is at or after other in the fork sequence.
func (seq ForkSeq) Gte(other ForkSeq) bool {
	return seq >= other
}

// String names the fork for logging.
func (seq ForkSeq) String() string {
	switch seq {
	case Phase0:
		return "phase0"
	case Altair:
		return "altair"
	case Bellatrix:
		return "bellatrix"
	case Capella:
		return "capella"
	case Deneb:
		return "deneb"
	case Electra:
		return "electra"
	case Fulu:
		return "fulu"
	default:
		return "unknown"
	}
}

// BeaconChainConfig holds every constant the transition engine reads. Values
// default to mainnet; a minimal/testnet config can be built with the same
// struct literal for spec tests.
type BeaconChainConfig struct {
	// Time parameters.
	SecondsPerSlot  uint64
	SlotsPerEpoch   uint64
	MinSeedLookahead uint64
	ShuffleRoundCount uint64

	SlotsPerHistoricalRoot     uint64
	EpochsPerHistoricalVector  uint64
	EpochsPerSlashingsVector   uint64
	HistoricalRootsLimit       uint64

	// Committee / validator sizing.
	TargetCommitteeSize     uint64
	MaxCommitteesPerSlot    uint64
	MaxValidatorsPerCommittee uint64
	SyncCommitteeSize       uint64

	// Gwei values.
	EffectiveBalanceIncrement uint64
	MaxEffectiveBalance       uint64
	EjectionBalance           uint64
	MinDepositAmount          uint64

	// Reward/penalty quotients.
	BaseRewardFactor          uint64
	BaseRewardsPerEpoch       uint64
	WhistleblowerRewardQuotient uint64
	ProposerWeight            uint64
	WeightDenominator         uint64
	InactivityPenaltyQuotient uint64
	MinSlashingPenaltyQuotient uint64

	// Operation limits.
	MaxProposerSlashings    uint64
	MaxAttesterSlashings    uint64
	MaxAttestations         uint64
	MaxDeposits             uint64
	MaxVoluntaryExits       uint64
	MaxBlsToExecutionChanges uint64
	MaxBlobsPerBlock        uint64
	MaxBlobsPerBlockElectra uint64

	// Churn.
	MinPerEpochChurnLimit       uint64
	ChurnLimitQuotient          uint64
	MaxPerEpochActivationChurnLimit uint64

	// Fork epochs. ^uint64(0) ("FarFutureEpoch") means "never scheduled".
	AltairForkEpoch    uint64
	BellatrixForkEpoch uint64
	CapellaForkEpoch   uint64
	DenebForkEpoch     uint64
	ElectraForkEpoch   uint64
	FuluForkEpoch      uint64

	// Domains, as the low 4 bytes of a DomainType.
	DomainBeaconProposer uint32
	DomainBeaconAttester uint32
	DomainRandao         uint32
	DomainVoluntaryExit  uint32
	DomainSyncCommittee  uint32
}

// FarFutureEpoch marks a fork (or validator field) as not yet scheduled.
const FarFutureEpoch = ^uint64(0)

var (
	mainnet     *BeaconChainConfig
	mainnetOnce sync.Once
)

// BeaconConfig returns the process-wide mainnet configuration, built once
// and shared read-only thereafter (mirrors the teacher's
// `params.BeaconConfig()` singleton accessor).
func BeaconConfig() *BeaconChainConfig {
	mainnetOnce.Do(func() {
		mainnet = mainnetConfig()
	})
	return mainnet
}

func mainnetConfig() *BeaconChainConfig {
	return &BeaconChainConfig{
		SecondsPerSlot:    12,
		SlotsPerEpoch:     32,
		MinSeedLookahead:  1,
		ShuffleRoundCount: 90,

		SlotsPerHistoricalRoot:    8192,
		EpochsPerHistoricalVector: 65536,
		EpochsPerSlashingsVector:  8192,
		HistoricalRootsLimit:      16777216,

		TargetCommitteeSize:       128,
		MaxCommitteesPerSlot:      64,
		MaxValidatorsPerCommittee: 2048,
		SyncCommitteeSize:         512,

		EffectiveBalanceIncrement: 1_000_000_000,
		MaxEffectiveBalance:       32_000_000_000,
		EjectionBalance:           16_000_000_000,
		MinDepositAmount:          1_000_000_000,

		BaseRewardFactor:            64,
		BaseRewardsPerEpoch:         4,
		WhistleblowerRewardQuotient: 512,
		ProposerWeight:              8,
		WeightDenominator:           64,
		InactivityPenaltyQuotient:   1 << 26,
		MinSlashingPenaltyQuotient:  128,

		MaxProposerSlashings:     16,
		MaxAttesterSlashings:     2,
		MaxAttestations:          128,
		MaxDeposits:              16,
		MaxVoluntaryExits:        16,
		MaxBlsToExecutionChanges: 16,
		MaxBlobsPerBlock:         6,
		MaxBlobsPerBlockElectra:  9,

		MinPerEpochChurnLimit:           4,
		ChurnLimitQuotient:              65536,
		MaxPerEpochActivationChurnLimit: 8,

		AltairForkEpoch:    74240,
		BellatrixForkEpoch: 144896,
		CapellaForkEpoch:   194048,
		DenebForkEpoch:     269568,
		ElectraForkEpoch:   FarFutureEpoch,
		FuluForkEpoch:      FarFutureEpoch,

		DomainBeaconProposer: 0x00000000,
		DomainBeaconAttester: 0x01000000,
		DomainRandao:         0x02000000,
		DomainVoluntaryExit:  0x04000000,
		DomainSyncCommittee:  0x07000000,
	}
}

// ForkEpoch returns the scheduled epoch for seq, or 0 for Phase0 (which is
// active from genesis and has no activation epoch of its own).
func (c *BeaconChainConfig) ForkEpoch(seq ForkSeq) uint64 {
	switch seq {
	case Altair:
		return c.AltairForkEpoch
	case Bellatrix:
		return c.BellatrixForkEpoch
	case Capella:
		return c.CapellaForkEpoch
	case Deneb:
		return c.DenebForkEpoch
	case Electra:
		return c.ElectraForkEpoch
	case Fulu:
		return c.FuluForkEpoch
	default:
		return 0
	}
}

// ForkSeqAtEpoch returns the highest fork whose activation epoch is <= epoch.
func (c *BeaconChainConfig) ForkSeqAtEpoch(epoch uint64) ForkSeq {
	seq := Phase0
	for _, candidate := range []ForkSeq{Altair, Bellatrix, Capella, Deneb, Electra, Fulu} {
		if c.ForkEpoch(candidate) <= epoch {
			seq = candidate
		}
	}
	return seq
}
