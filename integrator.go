package hmc

// Integrator advances a (position, momentum) pair by one discretized step of
// Hamiltonian dynamics. Implementations must be pure: the proposed values
// depend only on the inputs and the oracle.
//
// grad is the cached gradient of the log-density at pos, threaded through
// consecutive steps of a trajectory to avoid recomputation. Pass nil to have
// the step evaluate it. The returned gradient is taken at the proposed
// position and is the cache for the next step.
type Integrator interface {
	Step(oracle GradientOracle, pos, mom []float64, stepsize float64, grad []float64) (posNew, momNew, gradNew []float64, err error)
}

// LeapFrog is the standard second-order symplectic integrator: half-step
// momentum, full-step position, half-step momentum. It is the default
// dynamics for the samplers in this package.
type LeapFrog struct{}

func (LeapFrog) Step(oracle GradientOracle, pos, mom []float64, stepsize float64, grad []float64) ([]float64, []float64, []float64, error) {
	if grad == nil {
		var err error
		grad, _, err = oracle.GradientLogPDF(pos)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	d := len(pos)
	momNew := make([]float64, d)
	posNew := make([]float64, d)
	for i := 0; i < d; i++ {
		momNew[i] = mom[i] + 0.5*stepsize*grad[i]
	}
	for i := 0; i < d; i++ {
		posNew[i] = pos[i] + stepsize*momNew[i]
	}
	gradNew, _, err := oracle.GradientLogPDF(posNew)
	if err != nil {
		return nil, nil, nil, err
	}
	for i := 0; i < d; i++ {
		momNew[i] += 0.5 * stepsize * gradNew[i]
	}
	return posNew, momNew, gradNew, nil
}

// ModifiedEuler is a first-order alternative: full-step momentum at the
// current gradient, then full-step position with the updated momentum.
// Cheaper per step than LeapFrog but less accurate, so acceptance rates
// degrade faster with large stepsizes.
type ModifiedEuler struct{}

func (ModifiedEuler) Step(oracle GradientOracle, pos, mom []float64, stepsize float64, grad []float64) ([]float64, []float64, []float64, error) {
	if grad == nil {
		var err error
		grad, _, err = oracle.GradientLogPDF(pos)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	d := len(pos)
	momNew := make([]float64, d)
	posNew := make([]float64, d)
	for i := 0; i < d; i++ {
		momNew[i] = mom[i] + stepsize*grad[i]
	}
	for i := 0; i < d; i++ {
		posNew[i] = pos[i] + stepsize*momNew[i]
	}
	gradNew, _, err := oracle.GradientLogPDF(posNew)
	if err != nil {
		return nil, nil, nil, err
	}
	return posNew, momNew, gradNew, nil
}
