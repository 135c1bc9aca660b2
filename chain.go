package hmc

import (
	"fmt"
	"io"
	"iter"

	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the acceptance bookkeeping of one completed eager run.
type Stats struct {
	Accepted       int     // accepted Metropolis moves, seed row included
	AcceptanceRate float64 // Accepted / numSamples
}

// Chain is an ordered sequence of positions produced by one sampling run,
// with one named column per model variable. Row 0 holds the seed position.
// A chain is immutable once returned.
type Chain struct {
	vars  []string
	data  [][]float64
	stats Stats
}

// Variables returns the ordered column names.
func (c *Chain) Variables() []string {
	return append([]string(nil), c.vars...)
}

// Len returns the number of samples, seed row included.
func (c *Chain) Len() int {
	return len(c.data)
}

// At returns a copy of the i-th position.
func (c *Chain) At(i int) []float64 {
	return append([]float64(nil), c.data[i]...)
}

// Column returns a copy of all values of one named variable.
func (c *Chain) Column(name string) ([]float64, error) {
	col := -1
	for j, v := range c.vars {
		if v == name {
			col = j
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("chain has no variable %q", name)
	}
	out := make([]float64, len(c.data))
	for i, row := range c.data {
		out[i] = row[col]
	}
	return out, nil
}

// Stats returns the acceptance bookkeeping of the run that produced the chain.
func (c *Chain) Stats() Stats {
	return c.stats
}

// Dense materializes the chain as a samples × variables matrix.
func (c *Chain) Dense() *mat.Dense {
	d := len(c.vars)
	m := mat.NewDense(len(c.data), d, nil)
	for i, row := range c.data {
		m.SetRow(i, row)
	}
	return m
}

// Mean returns the per-variable empirical mean of the chain.
func (c *Chain) Mean() []float64 {
	d := len(c.vars)
	mean := make([]float64, d)
	for _, row := range c.data {
		for j := 0; j < d; j++ {
			mean[j] += row[j]
		}
	}
	n := float64(len(c.data))
	for j := range mean {
		mean[j] /= n
	}
	return mean
}

// Covariance returns the empirical covariance matrix of the chain.
func (c *Chain) Covariance() *mat.SymDense {
	cov := mat.NewSymDense(len(c.vars), nil)
	stat.CovarianceMatrix(cov, c.Dense(), nil)
	return cov
}

// OutputKind selects the materialized form of a chain.
type OutputKind int

const (
	// OutputTable renders the chain as a named-column table.
	OutputTable OutputKind = iota
	// OutputMatrix renders the chain as a plain samples × variables matrix.
	OutputMatrix
)

// ParseOutputKind maps the tokens "table" and "matrix" to an OutputKind.
// Any other token is a validation error.
func ParseOutputKind(s string) (OutputKind, error) {
	switch s {
	case "table":
		return OutputTable, nil
	case "matrix":
		return OutputMatrix, nil
	}
	return 0, fmt.Errorf("output kind must be \"table\" or \"matrix\", got %q", s)
}

// Render writes the chain to w in the requested form.
func (c *Chain) Render(w io.Writer, kind OutputKind) error {
	switch kind {
	case OutputTable:
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		header := make(table.Row, 0, len(c.vars)+1)
		header = append(header, "#")
		for _, v := range c.vars {
			header = append(header, v)
		}
		tw.AppendHeader(header)
		for i, pos := range c.data {
			row := make(table.Row, 0, len(pos)+1)
			row = append(row, i)
			for _, x := range pos {
				row = append(row, fmt.Sprintf("%.6g", x))
			}
			tw.AppendRow(row)
		}
		tw.Render()
		return nil
	case OutputMatrix:
		_, err := fmt.Fprintf(w, "%.6g\n", mat.Formatted(c.Dense()))
		return err
	}
	return fmt.Errorf("unknown output kind %d", kind)
}

// RunStats holds the acceptance bookkeeping of a lazy run. Until the
// sequence is fully consumed, Complete is false and AcceptanceRate is the
// running rate over the samples emitted so far; after exhaustion the rate
// uses the full requested sample count as denominator.
type RunStats struct {
	Accepted       int
	Emitted        int
	AcceptanceRate float64
	Complete       bool
}

// Run is the handle of one lazy sampling run. The position sequence is
// finite, produced on demand, and single-use: a fresh GenerateSample call is
// required to restart. Abandoning the sequence early is safe, but leaves the
// stats incomplete (Complete stays false).
type Run struct {
	vars    []string
	n       int
	started bool

	accepted int
	emitted  int
	complete bool
	err      error

	iterate func(yield func([]float64) bool)
}

// Variables returns the ordered variable names of the run's model.
func (r *Run) Variables() []string {
	return append([]string(nil), r.vars...)
}

// Positions returns the sample sequence. Each yielded position is a fresh
// copy owned by the consumer. The sequence ends early if the oracle or
// integrator fails; Err reports the failure.
func (r *Run) Positions() iter.Seq[[]float64] {
	return func(yield func([]float64) bool) {
		if r.started {
			return
		}
		r.started = true
		r.iterate(yield)
	}
}

// Stats returns the bookkeeping observed so far.
func (r *Run) Stats() RunStats {
	s := RunStats{
		Accepted: r.accepted,
		Emitted:  r.emitted,
		Complete: r.complete,
	}
	switch {
	case r.complete:
		s.AcceptanceRate = float64(r.accepted) / float64(r.n)
	case r.emitted > 0:
		s.AcceptanceRate = float64(r.accepted) / float64(r.emitted)
	}
	return s
}

// Err reports the failure that ended the sequence early, if any.
func (r *Run) Err() error {
	return r.err
}
