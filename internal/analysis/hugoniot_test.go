package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
)

func analytic(t *testing.T, p model.Params) *thermo.Analytic {
	t.Helper()
	an, err := thermo.NewAnalytic(p)
	require.NoError(t, err)
	return an
}

func TestPressure_MieGruneisenRelation(t *testing.T) {
	// With hν ∝ V^-γ the pressure of the oscillator is exactly γE/V.
	p := model.DefaultParams()
	an := analytic(t, p)

	for _, v := range []float64{6.5, 8, 9.75, 11.2, 13} {
		got, err := Pressure(an.FreeEnergy, v, DefaultStep)
		require.NoError(t, err)

		e, err := an.InternalEnergy(v)
		require.NoError(t, err)
		want := p.Gamma * e / v

		assert.Greater(t, got, 0.0, "V=%g", v)
		assert.InEpsilon(t, want, got, 1e-6, "V=%g", v)
	}
}

func TestBulkModulus_MatchesPressureSlope(t *testing.T) {
	p := model.DefaultParams()
	an := analytic(t, p)
	pressure := func(v float64) float64 {
		e, err := an.InternalEnergy(v)
		require.NoError(t, err)
		return p.Gamma * e / v
	}

	const h = 1e-4
	for _, v := range []float64{6.5, 9.75, 13} {
		got, err := BulkModulus(an.FreeEnergy, v, DefaultStep)
		require.NoError(t, err)

		want := -v * (pressure(v+h) - pressure(v-h)) / (2 * h)
		assert.Greater(t, got, 0.0)
		assert.InEpsilon(t, want, got, 1e-4, "V=%g", v)
	}
}

func TestPressure_PropagatesEvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	f := func(v float64) (float64, error) { return 0, boom }

	_, err := Pressure(f, 1, DefaultStep)
	assert.ErrorIs(t, err, boom)

	_, err = BulkModulus(f, 1, DefaultStep)
	assert.ErrorIs(t, err, boom)
}

func TestHugoniot(t *testing.T) {
	volumes := []float64{1, 2, 3}
	energies := []float64{10, 8, 4}
	pressure := []float64{5, 3, 1}

	h, err := Hugoniot(volumes, energies, pressure)
	require.NoError(t, err)

	assert.Equal(t, 5.0, h[0], "reference point takes p0")
	assert.InDelta(t, 2*(8-10)/(1-2.0)+5, h[1], 1e-15)
	assert.InDelta(t, 2*(4-10)/(1-3.0)+5, h[2], 1e-15)
}

func TestHugoniot_Lengths(t *testing.T) {
	_, err := Hugoniot([]float64{1, 2}, []float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrLength)

	h, err := Hugoniot(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, h)

	_, err = HugoniotAnalytic([]float64{1}, nil, 2)
	assert.ErrorIs(t, err, ErrLength)
}

func TestHugoniotAnalytic(t *testing.T) {
	h, err := HugoniotAnalytic([]float64{100, 100, 50}, []float64{0, 0.1, 0.4}, 2)
	require.NoError(t, err)

	assert.Equal(t, 0.0, h[0])
	assert.InDelta(t, 100*0.1/(1-2*0.1), h[1], 1e-12)
	assert.InDelta(t, 50*0.4/(1-2*0.4), h[2], 1e-12)
}

func TestHugoniotAnalytic_Pole(t *testing.T) {
	// γ = 2 puts the pole at ε = 0.5, the strain of the most compressed
	// default sample.
	h, err := HugoniotAnalytic([]float64{80, 80, 80}, []float64{0.5, 0.49, 0.51}, 2)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(h[0]))
	assert.Greater(t, h[1], 0.0)
	assert.Less(t, h[2], 0.0)
}

func TestCompute(t *testing.T) {
	p := model.DefaultParams()
	p.Samples = 11
	an := analytic(t, p)

	res, err := sweep.New(an, p).Run(context.Background(), sweep.DefaultConfig())
	require.NoError(t, err)

	c, err := Compute(an, res, DefaultStep, 3)
	require.NoError(t, err)
	require.Len(t, c.Pressure, 11)
	require.Len(t, c.HugoniotAnalytic, 11)

	assert.Equal(t, c.Pressure[0], c.Hugoniot[0])
	assert.Equal(t, 0.0, c.HugoniotAnalytic[10], "no strain at the reference volume")
	assert.Equal(t, 0.5, res.Strains[0])
	assert.True(t, math.IsNaN(c.HugoniotAnalytic[0]), "pole at the most compressed volume")
	for i := range c.Pressure {
		assert.Greater(t, c.Pressure[i], 0.0)
		assert.Greater(t, c.BulkModulus[i], 0.0)
		assert.False(t, math.IsNaN(c.Hugoniot[i]))
		assert.False(t, math.IsInf(c.Hugoniot[i], 0))
		assert.False(t, math.IsInf(c.HugoniotAnalytic[i], 0), "index %d", i)
		if i > 0 {
			assert.False(t, math.IsNaN(c.HugoniotAnalytic[i]), "index %d", i)
		}
	}
	// Pressure falls as the oscillator expands.
	for i := 1; i < len(c.Pressure); i++ {
		assert.Less(t, c.Pressure[i], c.Pressure[i-1])
	}
}

func TestCompute_RejectsBadInput(t *testing.T) {
	p := model.DefaultParams()
	an := analytic(t, p)
	res := &sweep.Result{Params: p, Volumes: []float64{1, 2}, Strains: []float64{0.5}, E: []float64{1, 2}}

	_, err := Compute(an, res, DefaultStep, 1)
	assert.ErrorIs(t, err, ErrLength)

	res.Strains = []float64{0.5, 0}
	_, err = Compute(an, res, 0, 1)
	assert.Error(t, err)
}
