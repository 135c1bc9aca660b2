package hmc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// varsOnly satisfies Model but not GradientOracle.
type varsOnly struct{ vars []string }

func (m varsOnly) Variables() []string { return m.vars }

func testGaussian2D(t *testing.T) *JointGaussian {
	t.Helper()
	cov := mat.NewSymDense(2, []float64{1, 0.2, 0.2, 1})
	g, err := NewJointGaussian([]string{"x", "y"}, []float64{1, -1}, cov)
	require.NoError(t, err)
	return g
}

func TestNewSampler_ConfigurationErrors(t *testing.T) {
	_, err := NewSampler(nil, DefaultSamplerConfig())
	assert.Error(t, err, "nil model")

	_, err = NewSampler(varsOnly{vars: []string{"x"}}, DefaultSamplerConfig())
	assert.Error(t, err, "model without gradient oracle or strategy")

	_, err = NewSampler(varsOnly{vars: nil}, DefaultSamplerConfig())
	assert.Error(t, err, "model without variables")

	// A bare Model becomes usable once a strategy is supplied.
	cfg := DefaultSamplerConfig()
	cfg.GradLogPDF = testGaussian2D(t)
	_, err = NewSampler(varsOnly{vars: []string{"x", "y"}}, cfg)
	assert.NoError(t, err)
}

func TestSampler_ValidationErrors(t *testing.T) {
	s, err := NewSampler(testGaussian2D(t), DefaultSamplerConfig())
	require.NoError(t, err)

	_, err = s.Sample([]float64{1}, 10, 2, 0.25)
	assert.Error(t, err, "wrong position length")

	_, err = s.Sample(nil, 10, 2, 0.25)
	assert.Error(t, err, "empty position")

	_, err = s.Sample([]float64{1, 1}, 0, 2, 0.25)
	assert.Error(t, err, "no samples requested")

	_, err = s.GenerateSample([]float64{1, 2, 3}, 10, 2, 0.25)
	assert.Error(t, err, "wrong position length, lazy variant")
}

func TestSampler_ChainShapeAndBookkeeping(t *testing.T) {
	s, err := NewSampler(testGaussian2D(t), DefaultSamplerConfig())
	require.NoError(t, err)

	seed := []float64{1, 1}
	chain, err := s.Sample(seed, 500, 2, 0.25)
	require.NoError(t, err)

	AssertChainShape(t, chain, 500, seed)
	AssertAcceptanceBookkeeping(t, chain.Stats(), 500)

	// Seed row counts as accepted, so the counter is at least 1.
	assert.GreaterOrEqual(t, chain.Stats().Accepted, 1)
	assert.Equal(t, []string{"x", "y"}, chain.Variables())
}

func TestSampler_Determinism(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.Seed = 42

	s1, err := NewSampler(testGaussian2D(t), cfg)
	require.NoError(t, err)
	s2, err := NewSampler(testGaussian2D(t), cfg)
	require.NoError(t, err)

	c1, err := s1.Sample([]float64{0, 0}, 200, 2, 0.3)
	require.NoError(t, err)
	c2, err := s2.Sample([]float64{0, 0}, 200, 2, 0.3)
	require.NoError(t, err)

	for i := 0; i < c1.Len(); i++ {
		assert.Equal(t, c1.At(i), c2.At(i), "row %d", i)
	}
	assert.Equal(t, c1.Stats(), c2.Stats())

	// A different seed diverges.
	cfg.Seed = 43
	s3, err := NewSampler(testGaussian2D(t), cfg)
	require.NoError(t, err)
	c3, err := s3.Sample([]float64{0, 0}, 200, 2, 0.3)
	require.NoError(t, err)
	assert.NotEqual(t, c1.At(c1.Len()-1), c3.At(c3.Len()-1))
}

func TestSampler_GaussianMomentsConverge(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical probe")
	}

	target := testGaussian2D(t)
	s, err := NewSampler(target, DefaultSamplerConfig())
	require.NoError(t, err)

	chain, err := s.Sample([]float64{1, 1}, 10000, 2, 0.25)
	require.NoError(t, err)

	AssertMomentsClose(t, chain, target.Mean(), target.Covariance(), DefaultAssertionConfig())
	PrintChainSummary(t, chain)
}

func TestSampler_AutomaticStepsize(t *testing.T) {
	s, err := NewSampler(testGaussian2D(t), DefaultSamplerConfig())
	require.NoError(t, err)

	chain, err := s.Sample([]float64{1, -1}, 200, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 200, chain.Len())
	// A derived stepsize should keep the chain moving, not freeze it.
	assert.Greater(t, chain.Stats().Accepted, 1)
}

func TestSampler_GenerateSampleMatchesEagerPositions(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.Seed = 7

	eager, err := NewSampler(testGaussian2D(t), cfg)
	require.NoError(t, err)
	lazy, err := NewSampler(testGaussian2D(t), cfg)
	require.NoError(t, err)

	chain, err := eager.Sample([]float64{0, 0}, 100, 2, 0.3)
	require.NoError(t, err)

	run, err := lazy.GenerateSample([]float64{0, 0}, 99, 2, 0.3)
	require.NoError(t, err)

	i := 1
	for pos := range run.Positions() {
		assert.Equal(t, chain.At(i), pos, "lazy emission %d vs eager row", i)
		i++
	}
	require.Equal(t, 100, i, "lazy run emits numSamples positions")

	stats := run.Stats()
	assert.True(t, stats.Complete)
	assert.Equal(t, 99, stats.Emitted)
	// The lazy counter does not include the seed.
	assert.Equal(t, chain.Stats().Accepted-1, stats.Accepted)
}

func TestSampler_GenerateSamplePartialDrain(t *testing.T) {
	s, err := NewSampler(testGaussian2D(t), DefaultSamplerConfig())
	require.NoError(t, err)

	run, err := s.GenerateSample([]float64{0, 0}, 100, 2, 0.3)
	require.NoError(t, err)

	got := 0
	for range run.Positions() {
		got++
		if got == 10 {
			break
		}
	}

	stats := run.Stats()
	assert.False(t, stats.Complete, "partial drain leaves the rate a running estimate")
	assert.Equal(t, 10, stats.Emitted)
	assert.LessOrEqual(t, stats.Accepted, 10)

	// The sequence is single-use.
	for range run.Positions() {
		t.Fatal("restarted a consumed run")
	}
}

func TestSampler_OracleFailureAbortsRun(t *testing.T) {
	failing := &failingOracle{inner: testGaussian2D(t), after: 50}
	cfg := DefaultSamplerConfig()
	cfg.GradLogPDF = failing

	s, err := NewSampler(varsOnly{vars: []string{"x", "y"}}, cfg)
	require.NoError(t, err)

	_, err = s.Sample([]float64{0, 0}, 1000, 2, 0.3)
	assert.ErrorContains(t, err, "blew up", "eager variant returns no partial chain")

	failing.calls = 0
	run, err := s.GenerateSample([]float64{0, 0}, 1000, 2, 0.3)
	require.NoError(t, err)

	emitted := 0
	for range run.Positions() {
		emitted++
	}
	assert.Greater(t, emitted, 0, "lazy variant yields samples up to the failure")
	assert.Less(t, emitted, 1000)
	assert.ErrorContains(t, run.Err(), "blew up")
	assert.False(t, run.Stats().Complete)
}

func TestClampAlpha(t *testing.T) {
	assert.Equal(t, 0.25, clampAlpha(0.25))
	assert.Equal(t, 1.0, clampAlpha(7.5))
	assert.Equal(t, 1.0, clampAlpha(math.Inf(1)), "exp overflow in the accepting direction")
	assert.Equal(t, 0.0, clampAlpha(math.NaN()), "NaN rejects instead of crashing the draw")
}
