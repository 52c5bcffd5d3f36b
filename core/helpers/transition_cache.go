package helpers

// ValidatorFlags are the per-validator participation flags tallied across
// one epoch boundary (spec §4.8 EpochTransitionCache). Bit layout mirrors
// the consensus spec's TIMELY_SOURCE/TARGET/HEAD flags.
type ValidatorFlags uint8

const (
	FlagTimelySource ValidatorFlags = 1 << iota
	FlagTimelyTarget
	FlagTimelyHead
)

// EpochTransitionCache holds the scratch per-epoch-boundary tallies spec
// §4.8 describes: per-validator flags, the slashing queue, stake-by-
// increment aggregates, and the reward/penalty arrays rewards_and_penalties
// accumulates into before they are applied to balances in one pass.
type EpochTransitionCache struct {
	PreviousEpochFlags []ValidatorFlags
	CurrentEpochFlags  []ValidatorFlags

	IndicesToSlash []uint32

	// Stake-by-increment aggregates, in units of EFFECTIVE_BALANCE_INCREMENT.
	PreviousEpochSourceStake uint64
	PreviousEpochTargetStake uint64
	PreviousEpochHeadStake   uint64
	CurrentEpochTargetStake  uint64
	TotalActiveStake         uint64

	Rewards  []uint64
	Penalties []uint64
}

// NewEpochTransitionCache allocates scratch arrays sized to validatorCount.
func NewEpochTransitionCache(validatorCount int) *EpochTransitionCache {
	return &EpochTransitionCache{
		PreviousEpochFlags: make([]ValidatorFlags, validatorCount),
		CurrentEpochFlags:  make([]ValidatorFlags, validatorCount),
		Rewards:            make([]uint64, validatorCount),
		Penalties:          make([]uint64, validatorCount),
	}
}

// AddReward accumulates a reward for validator index i (clamped to the
// array bounds the cache was built with; out-of-range indices are ignored
// since they cannot occur given NewEpochTransitionCache is always sized to
// the state's validator count at the start of process_epoch).
func (c *EpochTransitionCache) AddReward(i uint32, amount uint64) {
	if int(i) < len(c.Rewards) {
		c.Rewards[i] += amount
	}
}

// AddPenalty accumulates a penalty for validator index i.
func (c *EpochTransitionCache) AddPenalty(i uint32, amount uint64) {
	if int(i) < len(c.Penalties) {
		c.Penalties[i] += amount
	}
}

// QueueSlash records validator index i for slashing at the end of the
// current epoch transition stage.
func (c *EpochTransitionCache) QueueSlash(i uint32) {
	c.IndicesToSlash = append(c.IndicesToSlash, i)
}

// HasFlag reports whether validator i earned flag during the given epoch's
// participation record (current=true selects CurrentEpochFlags).
func (c *EpochTransitionCache) HasFlag(i uint32, flag ValidatorFlags, current bool) bool {
	flags := c.PreviousEpochFlags
	if current {
		flags = c.CurrentEpochFlags
	}
	if int(i) >= len(flags) {
		return false
	}
	return flags[i]&flag != 0
}
