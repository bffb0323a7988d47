package prior

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniform_LogProb(t *testing.T) {
	p := Uniform(0, 2)
	require.InDelta(t, math.Log(0.5), p.LogProb(1.0), 1e-12)
	require.True(t, math.IsInf(p.LogProb(3.0), -1))
	require.True(t, math.IsInf(p.LogProb(-1.0), -1))
}

func TestLogUniform_LogProb(t *testing.T) {
	p := LogUniform(1, math.E)
	// density 1/(x * ln(max/min)), here ln(max/min) = 1
	require.InDelta(t, -math.Log(1.5), p.LogProb(1.5), 1e-12)
	require.True(t, math.IsInf(p.LogProb(0.5), -1))
}

func TestNormal_LogProb(t *testing.T) {
	p := Normal(0, 1)
	want := -0.5 * math.Log(2*math.Pi)
	require.InDelta(t, want, p.LogProb(0), 1e-12)
}

func TestSample_StaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	u := Uniform(-3, -1)
	lu := LogUniform(0.1, 10)
	for i := 0; i < 1000; i++ {
		x := u.Sample(rng)
		require.GreaterOrEqual(t, x, -3.0)
		require.LessOrEqual(t, x, -1.0)

		y := lu.Sample(rng)
		require.GreaterOrEqual(t, y, 0.1)
		require.LessOrEqual(t, y, 10.0)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Uniform(0, 1).Validate())
	require.Error(t, Uniform(1, 0).Validate())
	require.Error(t, LogUniform(-1, 10).Validate())
	require.Error(t, Normal(0, 0).Validate())
	require.Error(t, Prior{Kind: "cauchy"}.Validate())
}

func TestDict_ValidateMissingParameter(t *testing.T) {
	d := Dict{"a": LogUniform(1e-3, 1e3)}
	err := d.Validate([]string{"a", "alpha_1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "alpha_1")
}

func TestDict_LogProbSums(t *testing.T) {
	d := Dict{
		"a": Uniform(0, 2),
		"b": Uniform(0, 4),
	}
	got := d.LogProb(map[string]float64{"a": 1, "b": 1})
	require.InDelta(t, math.Log(0.5)+math.Log(0.25), got, 1e-12)

	got = d.LogProb(map[string]float64{"a": 3, "b": 1})
	require.True(t, math.IsInf(got, -1))
}

func TestDict_CloneIsIndependent(t *testing.T) {
	d := Dict{"a": Uniform(0, 1)}
	c := d.Clone()
	c["a"] = Uniform(5, 6)
	require.Equal(t, 1.0, d["a"].Maximum)
}

func TestWidth(t *testing.T) {
	require.InDelta(t, 2.0, Uniform(-1, 1).Width(), 1e-12)
	require.Greater(t, Normal(0, 1).Width(), 0.0)
}
