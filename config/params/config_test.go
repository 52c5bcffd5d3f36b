package params_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/config/params"
)

func TestForkSeqGte(t *testing.T) {
	require.True(t, params.Altair.Gte(params.Phase0))
	require.True(t, params.Altair.Gte(params.Altair))
	require.False(t, params.Phase0.Gte(params.Altair))
	require.True(t, params.Fulu.Gte(params.Electra))
}

func TestForkSeqString(t *testing.T) {
	cases := map[params.ForkSeq]string{
		params.Phase0:    "phase0",
		params.Altair:    "altair",
		params.Bellatrix: "bellatrix",
		params.Capella:   "capella",
		params.Deneb:     "deneb",
		params.Electra:   "electra",
		params.Fulu:      "fulu",
		params.ForkSeq(99): "unknown",
	}
	for seq, want := range cases {
		require.Equal(t, want, seq.String())
	}
}

func TestBeaconConfigIsSingleton(t *testing.T) {
	a := params.BeaconConfig()
	b := params.BeaconConfig()
	require.Same(t, a, b)
}

func TestBeaconConfigMainnetValues(t *testing.T) {
	cfg := params.BeaconConfig()
	require.Equal(t, uint64(12), cfg.SecondsPerSlot)
	require.Equal(t, uint64(32), cfg.SlotsPerEpoch)
	require.Equal(t, uint64(1_000_000_000), cfg.EffectiveBalanceIncrement)
	require.Equal(t, uint64(32_000_000_000), cfg.MaxEffectiveBalance)
	require.Equal(t, params.FarFutureEpoch, cfg.ElectraForkEpoch)
	require.Equal(t, params.FarFutureEpoch, cfg.FuluForkEpoch)
}

func TestForkEpochAndForkSeqAtEpoch(t *testing.T) {
	cfg := params.BeaconConfig()
	require.Equal(t, cfg.AltairForkEpoch, cfg.ForkEpoch(params.Altair))
	require.Equal(t, uint64(0), cfg.ForkEpoch(params.Phase0))

	require.Equal(t, params.Phase0, cfg.ForkSeqAtEpoch(0))
	require.Equal(t, params.Altair, cfg.ForkSeqAtEpoch(cfg.AltairForkEpoch))
	require.Equal(t, params.Deneb, cfg.ForkSeqAtEpoch(cfg.DenebForkEpoch))
	require.Equal(t, params.Deneb, cfg.ForkSeqAtEpoch(cfg.ElectraForkEpoch-1))
}
