package hmc

import "fmt"

// checkPosition validates a caller-supplied position vector against the
// model dimensionality. All shape errors surface here, at the call boundary,
// never inside the sampling loop.
func checkPosition(pos []float64, dim int) error {
	if len(pos) == 0 {
		return fmt.Errorf("initial position must be a non-empty vector")
	}
	if len(pos) != dim {
		return fmt.Errorf("initial position has %d entries, model has %d variables", len(pos), dim)
	}
	return nil
}

func checkNumSamples(n int) error {
	if n < 1 {
		return fmt.Errorf("number of samples must be at least 1, got %d", n)
	}
	return nil
}
