package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/anirband/hmc"
)

// targetSpec is the YAML declaration of a Gaussian sampling target:
//
//	variables: [x, y]
//	mean: [1, -1]
//	covariance:
//	  - [3, 0.7]
//	  - [0.7, 5]
type targetSpec struct {
	Variables  []string    `yaml:"variables"`
	Mean       []float64   `yaml:"mean"`
	Covariance [][]float64 `yaml:"covariance"`
}

func loadTarget(path string) (*hmc.JointGaussian, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading target file: %w", err)
	}
	return parseTarget(data)
}

func parseTarget(data []byte) (*hmc.JointGaussian, error) {
	var spec targetSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing target file: %w", err)
	}

	d := len(spec.Variables)
	if len(spec.Covariance) != d {
		return nil, fmt.Errorf("covariance has %d rows, want %d", len(spec.Covariance), d)
	}
	cov := mat.NewSymDense(max(d, 1), nil)
	for i, row := range spec.Covariance {
		if len(row) != d {
			return nil, fmt.Errorf("covariance row %d has %d entries, want %d", i, len(row), d)
		}
		for j := i; j < d; j++ {
			if spec.Covariance[j][i] != row[j] {
				return nil, fmt.Errorf("covariance is not symmetric at (%d,%d)", i, j)
			}
			cov.SetSym(i, j, row[j])
		}
	}

	return hmc.NewJointGaussian(spec.Variables, spec.Mean, cov)
}

// parseFloats parses a comma-separated vector flag like "1,0.5,-2".
func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q) is not a number", i, p)
		}
		out[i] = v
	}
	return out, nil
}
