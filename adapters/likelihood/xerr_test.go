package likelihood

import (
	"math"
	"testing"
)

func TestUniformXErr_XTermIsMinusNLogBinSize(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{1, 2, 3, 4}
	binSize := 0.5

	g, err := NewGaussianUniformXErr(x, y, NewFixedNoise(1), binSize, lineModel(), nil)
	if err != nil {
		t.Fatalf("NewGaussianUniformXErr failed: %v", err)
	}

	want := -float64(len(x)) * math.Log(binSize)
	got := g.LogLikelihoodX()
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("LogLikelihoodX = %v, want %v", got, want)
	}
}

func TestUniformXErr_TotalIsXTermPlusYTerm(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{2.1, 4.0, 6.2}
	binSize := 2.0

	g, err := NewGaussianUniformXErr(x, y, NewFixedNoise(0.5), binSize, lineModel(), nil)
	if err != nil {
		t.Fatalf("NewGaussianUniformXErr failed: %v", err)
	}
	p := g.Parameters()
	p.Set("m", 2)
	p.Set("c", 0)

	want := g.LogLikelihoodX() + g.LogLikelihoodY()
	got := g.LogLikelihood()
	if got != want {
		t.Errorf("LogLikelihood = %v, want x+y = %v", got, want)
	}
}

func TestUniformXErr_NoiseIncludesXTerm(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{1, 1, 1}
	binSize := 1.5
	sigma := 1.0

	g, err := NewGaussianUniformXErr(x, y, NewFixedNoise(sigma), binSize, lineModel(), nil)
	if err != nil {
		t.Fatalf("NewGaussianUniformXErr failed: %v", err)
	}

	want := -3*math.Log(binSize) + closedFormGaussian(y, sigma)
	got := g.NoiseLogLikelihood()
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("NoiseLogLikelihood = %v, want %v", got, want)
	}
	if again := g.NoiseLogLikelihood(); again != got {
		t.Errorf("cached noise value changed: %v vs %v", again, got)
	}
}

func TestUniformXErr_RejectsNonPositiveBinSize(t *testing.T) {
	if _, err := NewGaussianUniformXErr([]float64{1}, []float64{1}, NewFixedNoise(1), 0, lineModel(), nil); err == nil {
		t.Error("expected error for zero bin size")
	}
}
