package hmc

import "math"

// findReasonableStepsize picks an initial stepsize by geometric search,
// doubling or halving until the acceptance probability of one exploratory
// dynamics step crosses 0.5 (NUTS Algorithm 4).
//
// The momentum draw is made once and held fixed for the whole search, so
// every trial probes the same acceptance surface. The gradient returned by
// the previous trial is reused as the cache for the next one. A non-finite
// acceptance probability fails the loop condition and terminates the search.
func (s *Sampler) findReasonableStepsize(run *runState, pos []float64, guess float64) (float64, error) {
	stepsize := guess
	mom := run.momentum(len(pos))

	posBar, momBar, grad, err := s.integ.Step(s.oracle, pos, mom, stepsize, nil)
	if err != nil {
		return 0, err
	}
	p, err := acceptanceProb(s.oracle, pos, posBar, mom, momBar)
	if err != nil {
		return 0, err
	}

	a := -1.0
	if p > 0.5 {
		a = 1.0
	}

	for math.Pow(p, a) > math.Pow(2, -a) {
		stepsize *= math.Pow(2, a)

		posBar, momBar, grad, err = s.integ.Step(s.oracle, pos, mom, stepsize, grad)
		if err != nil {
			return 0, err
		}
		if p, err = acceptanceProb(s.oracle, pos, posBar, mom, momBar); err != nil {
			return 0, err
		}
	}
	return stepsize, nil
}
