package helpers

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/eth2-core/beacon-engine/config/params"
)

var log = logrus.WithField("prefix", "helpers")

// CommitteeSlice is an alias into EpochShuffling.Shuffled; committee slices
// never get their own backing array (spec §3).
type CommitteeSlice []uint64

// EpochShuffling is the reference-counted shuffled-validator-index view for
// one epoch (spec §3/§4.6). A shuffling is shared by every CachedBeaconState
// whose previous/current/next epoch cache slot references the same seed;
// ShufflingCache is what makes that sharing concrete.
type EpochShuffling struct {
	Epoch            uint64
	ActiveIndices    []uint64
	Shuffled         []uint64
	Committees       [][]CommitteeSlice // [slot][committee_index]
	CommitteesPerSlot uint64

	refcount int
}

// NewEpochShuffling runs the swap-or-not unshuffle over activeIndices and
// precomputes the 32-slot x committees-per-slot index, per spec §4.6.
func NewEpochShuffling(seed [32]byte, epoch uint64, activeIndices []uint64) (*EpochShuffling, error) {
	cfg := params.BeaconConfig()
	shuffled, err := InnerShuffleList(activeIndices, seed, uint8(cfg.ShuffleRoundCount), false)
	if err != nil {
		return nil, err
	}

	activeCount := uint64(len(activeIndices))
	cps := committeesPerSlot(activeCount, cfg)

	committees := make([][]CommitteeSlice, cfg.SlotsPerEpoch)
	for slot := uint64(0); slot < cfg.SlotsPerEpoch; slot++ {
		row := make([]CommitteeSlice, cps)
		for idx := uint64(0); idx < cps; idx++ {
			k := slot*cps + idx
			total := cfg.SlotsPerEpoch * cps
			start := activeCount * k / total
			end := activeCount * (k + 1) / total
			row[idx] = shuffled[start:end]
		}
		committees[slot] = row
	}

	return &EpochShuffling{
		Epoch:             epoch,
		ActiveIndices:     activeIndices,
		Shuffled:          shuffled,
		Committees:        committees,
		CommitteesPerSlot: cps,
		refcount:          1,
	}, nil
}

func committeesPerSlot(activeCount uint64, cfg *params.BeaconChainConfig) uint64 {
	cps := activeCount / cfg.SlotsPerEpoch / cfg.TargetCommitteeSize
	if cps > cfg.MaxCommitteesPerSlot {
		return cfg.MaxCommitteesPerSlot
	}
	if cps == 0 {
		return 1
	}
	return cps
}

// Ref increments the shuffling's reference count. ShufflingCache.Get calls
// this for every cache hit; any other holder that shares the shuffling
// calls it itself.
func (s *EpochShuffling) Ref() {
	s.refcount++
}

// Unref decrements the reference count; at zero the shuffling's slices are
// dropped for the garbage collector to reclaim (spec §3: "freed when the
// last holder drops").
func (s *EpochShuffling) Unref() {
	s.refcount--
	if s.refcount <= 0 {
		s.ActiveIndices = nil
		s.Shuffled = nil
		s.Committees = nil
	}
}

// Committee returns the committee slice for (slot, committeeIndex) within
// this shuffling's epoch.
func (s *EpochShuffling) Committee(slotInEpoch, committeeIndex uint64) CommitteeSlice {
	if int(slotInEpoch) >= len(s.Committees) {
		return nil
	}
	row := s.Committees[slotInEpoch]
	if committeeIndex >= uint64(len(row)) {
		return nil
	}
	return row[committeeIndex]
}

// shufflingCacheSize bounds the LRU so long-running validators don't pin
// every historical epoch's shuffling in memory.
const shufflingCacheSize = 8

// ShufflingCache is a golang-lru-backed cache of *EpochShuffling keyed by
// seed, letting adjacent CachedBeaconStates that share an epoch boundary
// reuse the same shuffling instead of recomputing swap-or-not from scratch.
// Grounded in the teacher's committeeCache / cache.NewCommitteesCache()
// pattern in core/helpers/committee.go, generalized from the teacher's
// FIFO-backed committee cache to an LRU of whole shufflings.
type ShufflingCache struct {
	cache *lru.Cache
}

// NewShufflingCache constructs an empty cache. Evicted entries have their
// refcount dropped via Unref, matching the reference-counted sharing model
// in spec §3.
func NewShufflingCache() *ShufflingCache {
	c, err := lru.NewWithEvict(shufflingCacheSize, func(_, value interface{}) {
		if sh, ok := value.(*EpochShuffling); ok {
			sh.Unref()
		}
	})
	if err != nil {
		// lru.NewWithEvict only errors on a non-positive size, which is a
		// programmer error, not a runtime condition.
		panic(err)
	}
	return &ShufflingCache{cache: c}
}

// Get returns the cached shuffling for seed, bumping its refcount, or false
// if absent.
func (c *ShufflingCache) Get(seed [32]byte) (*EpochShuffling, bool) {
	v, ok := c.cache.Get(seed)
	if !ok {
		log.WithField("seed", seed).Trace("shuffling cache miss")
		return nil, false
	}
	sh := v.(*EpochShuffling)
	sh.Ref()
	return sh, true
}

// Put installs sh under seed, evicting the least-recently-used entry if the
// cache is full.
func (c *ShufflingCache) Put(seed [32]byte, sh *EpochShuffling) {
	c.cache.Add(seed, sh)
}
