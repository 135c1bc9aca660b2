package hmc

import (
	"fmt"
	"math"
)

// DefaultDelta is the conventional target mean acceptance rate for stepsize
// adaptation.
const DefaultDelta = 0.65

// Dual-averaging constants (Hoffman & Gelman, NUTS paper, section 3.2.1).
const (
	daGamma = 0.05 // shrinkage strength toward mu
	daT0    = 10.0 // stabilizes early iterations
	daKappa = 0.75 // decay of the averaging weights
)

// DualAveraging is an HMC sampler that tunes its stepsize during a warm-up
// phase. After each of the first numAdapt iterations the stepsize is updated
// by a stochastic-approximation recursion driving the mean acceptance
// probability toward delta; afterwards it is frozen at the running
// dual-averaging estimate.
type DualAveraging struct {
	*Sampler
	delta float64
}

// NewDualAveraging builds a stepsize-adapting HMC sampler. delta is the
// target mean acceptance rate and must lie in (0, 1].
func NewDualAveraging(model Model, delta float64, cfg SamplerConfig) (*DualAveraging, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta <= 0 || delta > 1 {
		return nil, fmt.Errorf("delta must be a real value in (0, 1], got %v", delta)
	}
	s, err := NewSampler(model, cfg)
	if err != nil {
		return nil, err
	}
	return &DualAveraging{Sampler: s, delta: delta}, nil
}

// Delta returns the target mean acceptance rate.
func (d *DualAveraging) Delta() float64 {
	return d.delta
}

// adaptStepsize applies one dual-averaging update at iteration t using that
// iteration's clamped acceptance probability alpha:
//
//	eta   = 1/(t + t0)
//	hBar  = (1-eta)·hBar + eta·(delta - alpha)
//	step  = exp(mu - sqrt(t)/gamma · hBar)
//	w     = t^(-kappa)
//	sBar  = exp(w·log(step) + (1-w)·log(sBar))
func (d *DualAveraging) adaptStepsize(t int, alpha, stepsizeBar, hBar, mu float64) (stepsize, stepsizeBarNew, hBarNew float64) {
	ti := float64(t)
	eta := 1 / (ti + daT0)
	hBar = (1-eta)*hBar + eta*(d.delta-alpha)
	stepsize = math.Exp(mu - math.Sqrt(ti)/daGamma*hBar)
	w := math.Pow(ti, -daKappa)
	stepsizeBar = math.Exp(w*math.Log(stepsize) + (1-w)*math.Log(stepsizeBar))
	return stepsize, stepsizeBar, hBar
}

// Sample runs an eager chain like Sampler.Sample, adapting the stepsize for
// the first numAdapt iterations and freezing it at the dual-averaging
// estimate afterwards. A numAdapt of 1 or less disables adaptation entirely
// and reproduces the plain sampler exactly.
//
// Because the stepsize moves during warm-up, the integrator step count is
// recomputed from the current stepsize at every iteration rather than fixed
// up front.
func (d *DualAveraging) Sample(initialPos []float64, numAdapt, numSamples int, trajectoryLength, stepsize float64) (*Chain, error) {
	if numAdapt <= 1 {
		return d.Sampler.Sample(initialPos, numSamples, trajectoryLength, stepsize)
	}
	if err := checkPosition(initialPos, d.dim); err != nil {
		return nil, err
	}
	if err := checkNumSamples(numSamples); err != nil {
		return nil, err
	}

	run := d.newRun()
	if stepsize <= 0 {
		var err error
		if stepsize, err = d.findReasonableStepsize(run, initialPos, 1); err != nil {
			return nil, err
		}
		d.log.Debug("derived initial stepsize", "stepsize", stepsize)
	}

	mu := math.Log(10 * stepsize)
	stepsizeBar, hBar := 1.0, 0.0

	data := make([][]float64, numSamples)
	data[0] = append([]float64(nil), initialPos...)
	run.accepted = 1 // seed row counts as accepted

	pos := data[0]
	for i := 1; i < numSamples; i++ {
		var alpha float64
		var err error
		if pos, alpha, err = d.step(run, pos, stepsize, lstepCount(trajectoryLength, stepsize)); err != nil {
			return nil, err
		}
		data[i] = append([]float64(nil), pos...)

		if i <= numAdapt {
			stepsize, stepsizeBar, hBar = d.adaptStepsize(i, alpha, stepsizeBar, hBar, mu)
			d.log.Debug("stepsize adaptation", "iter", i, "alpha", alpha, "stepsize", stepsize, "stepsize_bar", stepsizeBar)
		} else {
			stepsize = stepsizeBar
		}
	}

	return &Chain{
		vars: d.model.Variables(),
		data: data,
		stats: Stats{
			Accepted:       run.accepted,
			AcceptanceRate: float64(run.accepted) / float64(numSamples),
		},
	}, nil
}

// GenerateSample is the lazy counterpart of Sample: positions are produced
// one at a time as the consumer advances the sequence, with the same
// adaptation rule. The seed position is never emitted and the acceptance
// counter starts at 0, matching Sampler.GenerateSample.
//
// Both variants adapt exactly while the 1-based iteration index is at most
// numAdapt; the lazy variant runs numSamples iterations instead of
// numSamples-1 because it does not re-emit the seed.
func (d *DualAveraging) GenerateSample(initialPos []float64, numAdapt, numSamples int, trajectoryLength, stepsize float64) (*Run, error) {
	if numAdapt <= 1 {
		return d.Sampler.GenerateSample(initialPos, numSamples, trajectoryLength, stepsize)
	}
	if err := checkPosition(initialPos, d.dim); err != nil {
		return nil, err
	}
	if err := checkNumSamples(numSamples); err != nil {
		return nil, err
	}

	run := d.newRun()
	if stepsize <= 0 {
		var err error
		if stepsize, err = d.findReasonableStepsize(run, initialPos, 1); err != nil {
			return nil, err
		}
		d.log.Debug("derived initial stepsize", "stepsize", stepsize)
	}

	mu := math.Log(10 * stepsize)
	stepsizeBar, hBar := 1.0, 0.0

	r := &Run{vars: d.model.Variables(), n: numSamples}
	r.iterate = func(yield func([]float64) bool) {
		pos := append([]float64(nil), initialPos...)
		for i := 1; i <= numSamples; i++ {
			var alpha float64
			var err error
			if pos, alpha, err = d.step(run, pos, stepsize, lstepCount(trajectoryLength, stepsize)); err != nil {
				r.err = err
				return
			}

			if i <= numAdapt {
				stepsize, stepsizeBar, hBar = d.adaptStepsize(i, alpha, stepsizeBar, hBar, mu)
			} else {
				stepsize = stepsizeBar
			}

			r.accepted = run.accepted
			r.emitted++
			if !yield(append([]float64(nil), pos...)) {
				return
			}
		}
		r.complete = true
	}
	return r, nil
}
