package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    Baseline
		rate float64
		want float64
	}{
		{"two sigma above", Baseline{Mean: 0.05, StdDev: 0.02}, 0.09, 2.0},
		{"at mean", Baseline{Mean: 0.05, StdDev: 0.02}, 0.05, 0},
		{"below mean", Baseline{Mean: 0.05, StdDev: 0.02}, 0.01, -2.0},
		{"zero stddev degrades to zero", Baseline{Mean: 0.05, StdDev: 0}, 0.50, 0},
		{"negative stddev degrades to zero", Baseline{Mean: 0.05, StdDev: -1}, 0.50, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, tt.b.ZScore(tt.rate), 1e-12)
		})
	}
}

func TestRollingBaseline(t *testing.T) {
	t.Parallel()

	rb := NewRollingBaseline(4)

	_, ok := rb.Baseline("BTC-PERP")
	assert.False(t, ok, "empty window should not serve a baseline")

	for _, v := range []float64{0.02, 0.04, 0.06, 0.08} {
		rb.Update("BTC-PERP", v)
	}
	require.True(t, rb.Ready("BTC-PERP"))

	b, ok := rb.Baseline("BTC-PERP")
	require.True(t, ok)
	assert.InDelta(t, 0.05, b.Mean, 1e-12)
	// population stddev of {0.02,0.04,0.06,0.08}
	assert.InDelta(t, 0.022360679, b.StdDev, 1e-9)

	// Window slides: pushing one more drops the oldest observation.
	rb.Update("BTC-PERP", 0.12)
	b, ok = rb.Baseline("BTC-PERP")
	require.True(t, ok)
	assert.InDelta(t, (0.04+0.06+0.08+0.12)/4, b.Mean, 1e-12)

	// Other symbols are independent.
	_, ok = rb.Baseline("ETH-PERP")
	assert.False(t, ok)
}

func TestAlertValidate(t *testing.T) {
	t.Parallel()

	good := Alert{
		Strategy:  StrategyZScore,
		Symbol:    "BTC-PERP",
		Direction: Short,
		HoldDays:  7,
	}
	assert.NoError(t, good.Validate())

	bad := good
	bad.Symbol = "DOGE-QUARTERLY"
	assert.Error(t, bad.Validate())

	bad = good
	bad.Direction = "SIDEWAYS"
	assert.Error(t, bad.Validate())

	bad = good
	bad.Strategy = "yolo"
	assert.Error(t, bad.Validate())

	bad = good
	bad.HoldDays = 0
	assert.Error(t, bad.Validate())
}
