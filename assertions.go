package hmc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// AssertionConfig contains tolerances for chain-property assertions.
type AssertionConfig struct {
	// Relative tolerance for empirical moments vs the target's moments.
	MomentRelTol float64

	// Absolute floor used when a target moment is close to zero, so the
	// relative check does not blow up.
	MomentAbsTol float64

	// Absolute tolerance for acceptance-rate checks.
	AcceptanceTol float64
}

// DefaultAssertionConfig returns tolerances suited to chains of ~10k samples
// from a well-conditioned Gaussian target.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MomentRelTol:  0.10, // 10% relative error
		MomentAbsTol:  0.15,
		AcceptanceTol: 0.10,
	}
}

// AssertChainShape verifies the structural invariants of an eager chain:
// exactly numSamples rows, the seed position reproduced exactly in row 0,
// and every row carrying one value per model variable.
func AssertChainShape(t *testing.T, c *Chain, numSamples int, seed []float64) {
	t.Helper()

	if c.Len() != numSamples {
		t.Errorf("Chain has %d samples, want %d", c.Len(), numSamples)
	}

	vars := c.Variables()
	for i := 0; i < c.Len(); i++ {
		if got := c.At(i); len(got) != len(vars) {
			t.Errorf("Row %d has %d entries, want %d", i, len(got), len(vars))
		}
	}

	first := c.At(0)
	for j := range seed {
		if first[j] != seed[j] {
			t.Errorf("Row 0 differs from seed at %s: got %v, want %v", vars[j], first[j], seed[j])
		}
	}

	t.Logf("✓ Chain shape: %d samples × %d variables, row 0 = seed", c.Len(), len(vars))
}

// AssertAcceptanceBookkeeping verifies the counter invariants of a completed
// run: 0 ≤ accepted ≤ numSamples and rate == accepted/numSamples.
func AssertAcceptanceBookkeeping(t *testing.T, s Stats, numSamples int) {
	t.Helper()

	if s.Accepted < 0 || s.Accepted > numSamples {
		t.Errorf("Accepted count %d outside [0, %d]", s.Accepted, numSamples)
	}

	want := float64(s.Accepted) / float64(numSamples)
	if s.AcceptanceRate != want {
		t.Errorf("Acceptance rate %v inconsistent with accepted/numSamples = %v", s.AcceptanceRate, want)
	}

	t.Logf("✓ Bookkeeping: %d/%d accepted (rate %.4f)", s.Accepted, numSamples, s.AcceptanceRate)
}

// AssertMomentsClose verifies the empirical mean and covariance of the chain
// approach the target's moments, the standard correctness probe for an HMC
// implementation sampling a known Gaussian.
func AssertMomentsClose(t *testing.T, c *Chain, mean []float64, cov *mat.SymDense, cfg AssertionConfig) {
	t.Helper()

	gotMean := c.Mean()
	for j, want := range mean {
		if !closeRel(gotMean[j], want, cfg.MomentRelTol, cfg.MomentAbsTol) {
			t.Errorf("Mean[%s] = %.4f, want %.4f ± %.0f%%\n"+
				"Chain has not converged. Increase samples or check the stepsize.",
				c.Variables()[j], gotMean[j], want, cfg.MomentRelTol*100)
		}
	}

	gotCov := c.Covariance()
	d := cov.SymmetricDim()
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			if !closeRel(gotCov.At(i, j), cov.At(i, j), cfg.MomentRelTol, cfg.MomentAbsTol) {
				t.Errorf("Cov[%d,%d] = %.4f, want %.4f ± %.0f%%",
					i, j, gotCov.At(i, j), cov.At(i, j), cfg.MomentRelTol*100)
			}
		}
	}

	t.Logf("✓ Moments: empirical mean/covariance within %.0f%% of target", cfg.MomentRelTol*100)
}

// AssertAcceptanceNear verifies the observed acceptance rate clusters around
// the target rate, e.g. the dual-averaging delta after warm-up.
func AssertAcceptanceNear(t *testing.T, rate, target float64, cfg AssertionConfig) {
	t.Helper()

	if math.Abs(rate-target) > cfg.AcceptanceTol {
		t.Errorf("Acceptance rate %.4f too far from target %.4f (tolerance ±%.2f)\n"+
			"Stepsize adaptation did not settle near the target.",
			rate, target, cfg.AcceptanceTol)
	} else {
		t.Logf("✓ Acceptance rate %.4f within ±%.2f of target %.4f", rate, cfg.AcceptanceTol, target)
	}
}

// PrintChainSummary outputs the empirical moments to the test log.
func PrintChainSummary(t *testing.T, c *Chain) {
	t.Helper()

	t.Logf("\n=== Chain Summary ===")
	t.Logf("Samples: %d, accepted: %d (rate %.4f)", c.Len(), c.Stats().Accepted, c.Stats().AcceptanceRate)

	mean := c.Mean()
	cov := c.Covariance()
	for j, v := range c.Variables() {
		t.Logf("  %-8s mean=%9.4f  var=%9.4f", v, mean[j], cov.At(j, j))
	}
}

func closeRel(got, want, relTol, absTol float64) bool {
	diff := math.Abs(got - want)
	if math.Abs(want) < absTol {
		return diff <= absTol
	}
	return diff <= relTol*math.Abs(want)
}
