package hmc

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SamplerConfig controls sampler construction. The zero value is usable:
// the model must then implement GradientOracle itself, dynamics default to
// LeapFrog, and logging is discarded.
type SamplerConfig struct {
	// GradLogPDF computes the log-density and gradient of the target.
	// If nil, the model itself must satisfy GradientOracle.
	GradLogPDF GradientOracle
	// Integrator simulates Hamiltonian dynamics. Defaults to LeapFrog.
	Integrator Integrator
	// Seed of the single random stream used per run. Runs with equal seeds
	// and parameters produce identical chains.
	Seed uint64
	// Logger receives Debug-level progress. Nil discards.
	Logger *slog.Logger
}

// DefaultSamplerConfig returns the configuration used when callers have no
// preference: LeapFrog dynamics and a fixed seed.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{Integrator: LeapFrog{}, Seed: 1}
}

// Sampler draws samples from a continuous target distribution using simple
// Hamiltonian Monte Carlo.
//
// Every Sample or GenerateSample call is an independent run: the random
// stream is re-seeded and the acceptance counters reset, so state never
// leaks across calls.
type Sampler struct {
	model  Model
	oracle GradientOracle
	integ  Integrator
	seed   uint64
	log    *slog.Logger
	dim    int
}

// NewSampler builds an HMC sampler for the given target model. It fails at
// construction if no gradient oracle is available or the model declares no
// variables.
func NewSampler(model Model, cfg SamplerConfig) (*Sampler, error) {
	if model == nil {
		return nil, fmt.Errorf("model must not be nil")
	}
	dim := len(model.Variables())
	if dim == 0 {
		return nil, fmt.Errorf("model declares no variables")
	}

	oracle := cfg.GradLogPDF
	if oracle == nil {
		o, ok := model.(GradientOracle)
		if !ok {
			return nil, fmt.Errorf("model %T does not implement GradientOracle and no GradLogPDF strategy was given", model)
		}
		oracle = o
	}

	integ := cfg.Integrator
	if integ == nil {
		integ = LeapFrog{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Sampler{
		model:  model,
		oracle: oracle,
		integ:  integ,
		seed:   cfg.Seed,
		log:    logger,
		dim:    dim,
	}, nil
}

// runState is the per-run mutable state: one random stream feeding both the
// momentum resampling and the uniform accept/reject draws, plus the
// acceptance counter.
type runState struct {
	rng      *rand.Rand
	normal   distuv.Normal
	accepted int
}

func (s *Sampler) newRun() *runState {
	rng := rand.New(rand.NewSource(s.seed))
	return &runState{
		rng:    rng,
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: rng},
	}
}

// momentum draws a fresh N(0, I) momentum vector from the run's stream.
func (r *runState) momentum(dim int) []float64 {
	m := make([]float64, dim)
	for i := range m {
		m[i] = r.normal.Rand()
	}
	return m
}

// acceptanceProb computes the Metropolis acceptance probability between the
// current and proposed phase-space points,
//
//	exp[(logp' - logp) - 0.5·(‖mom'‖² - ‖mom‖²)],
//
// the ratio of the joint density exp(-H) at the two points. The result is
// not clamped; clamping to [0,1] happens at the call site.
func acceptanceProb(oracle GradientOracle, pos, posBar, mom, momBar []float64) (float64, error) {
	_, logp, err := oracle.GradientLogPDF(pos)
	if err != nil {
		return 0, err
	}
	_, logpBar, err := oracle.GradientLogPDF(posBar)
	if err != nil {
		return 0, err
	}
	kineticChange := 0.5 * (dot(momBar, momBar) - dot(mom, mom))
	return math.Exp(logpBar - logp - kineticChange), nil
}

// clampAlpha folds the raw acceptance probability into the [0,1] value used
// for the accept/reject draw and the stepsize adaptation. A diverging
// trajectory can overflow the exponential: +Inf clamps to 1, NaN rejects.
func clampAlpha(p float64) float64 {
	alpha := math.Min(1, p)
	if math.IsNaN(alpha) {
		return 0
	}
	return alpha
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// lstepCount converts a target trajectory length into the integrator step
// count: trajectoryLength/stepsize rounded to nearest, floored at 1.
func lstepCount(trajectoryLength, stepsize float64) int {
	l := int(math.Round(trajectoryLength / stepsize))
	if l < 1 {
		l = 1
	}
	return l
}

// step runs one HMC iteration: resample momentum, simulate lsteps dynamics
// steps threading the cached gradient forward, then accept or reject the
// trajectory endpoint. It returns the (possibly unchanged) position and the
// clamped acceptance probability.
func (s *Sampler) step(run *runState, pos []float64, stepsize float64, lsteps int) ([]float64, float64, error) {
	mom := run.momentum(len(pos))

	posBar := append([]float64(nil), pos...)
	momBar := append([]float64(nil), mom...)
	var grad []float64

	var err error
	for i := 0; i < lsteps; i++ {
		posBar, momBar, grad, err = s.integ.Step(s.oracle, posBar, momBar, stepsize, grad)
		if err != nil {
			return nil, 0, err
		}
	}

	p, err := acceptanceProb(s.oracle, pos, posBar, mom, momBar)
	if err != nil {
		return nil, 0, err
	}
	alpha := clampAlpha(p)

	if run.rng.Float64() < alpha {
		run.accepted++
		return posBar, alpha, nil
	}
	return pos, alpha, nil
}

// Sample runs a full HMC chain of numSamples positions starting at
// initialPos and materializes it eagerly. Row 0 of the chain is initialPos
// and counts as accepted by convention, so the acceptance rate of an
// all-reject run is 1/numSamples, not 0.
//
// trajectoryLength is the total simulated time per iteration; the
// integrator step count is trajectoryLength/stepsize rounded, floored at 1,
// and fixed for the whole run. A stepsize <= 0 requests automatic
// initialization via the doubling/halving heuristic.
func (s *Sampler) Sample(initialPos []float64, numSamples int, trajectoryLength, stepsize float64) (*Chain, error) {
	if err := checkPosition(initialPos, s.dim); err != nil {
		return nil, err
	}
	if err := checkNumSamples(numSamples); err != nil {
		return nil, err
	}

	run := s.newRun()
	if stepsize <= 0 {
		var err error
		if stepsize, err = s.findReasonableStepsize(run, initialPos, 1); err != nil {
			return nil, err
		}
		s.log.Debug("derived initial stepsize", "stepsize", stepsize)
	}

	lsteps := lstepCount(trajectoryLength, stepsize)
	data := make([][]float64, numSamples)
	data[0] = append([]float64(nil), initialPos...)
	run.accepted = 1 // seed row counts as accepted

	pos := data[0]
	for i := 1; i < numSamples; i++ {
		var err error
		if pos, _, err = s.step(run, pos, stepsize, lsteps); err != nil {
			return nil, err
		}
		data[i] = append([]float64(nil), pos...)
	}

	return &Chain{
		vars: s.model.Variables(),
		data: data,
		stats: Stats{
			Accepted:       run.accepted,
			AcceptanceRate: float64(run.accepted) / float64(numSamples),
		},
	}, nil
}

// GenerateSample prepares a lazy run of numSamples positions: each position
// is computed only when the consumer advances the sequence. Unlike Sample,
// the seed position is never emitted and does not count as accepted, so the
// counter starts at 0.
//
// Stepsize handling matches Sample. The acceptance rate is final only once
// the sequence has been fully drained; see RunStats.
func (s *Sampler) GenerateSample(initialPos []float64, numSamples int, trajectoryLength, stepsize float64) (*Run, error) {
	if err := checkPosition(initialPos, s.dim); err != nil {
		return nil, err
	}
	if err := checkNumSamples(numSamples); err != nil {
		return nil, err
	}

	run := s.newRun()
	if stepsize <= 0 {
		var err error
		if stepsize, err = s.findReasonableStepsize(run, initialPos, 1); err != nil {
			return nil, err
		}
		s.log.Debug("derived initial stepsize", "stepsize", stepsize)
	}

	lsteps := lstepCount(trajectoryLength, stepsize)
	r := &Run{vars: s.model.Variables(), n: numSamples}
	r.iterate = func(yield func([]float64) bool) {
		pos := append([]float64(nil), initialPos...)
		for i := 0; i < numSamples; i++ {
			var err error
			if pos, _, err = s.step(run, pos, stepsize, lsteps); err != nil {
				r.err = err
				return
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
