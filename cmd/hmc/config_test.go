package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	doc := []byte(`
variables: [x, y]
mean: [1.0, -1.0]
covariance:
  - [1.0, 0.2]
  - [0.2, 2.0]
`)
	target, err := parseTarget(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, target.Variables())
	assert.Equal(t, []float64{1, -1}, target.Mean())
	assert.InDelta(t, 0.2, target.Covariance().At(0, 1), 0)
}

func TestParseTargetRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"malformed yaml": "variables: [x",
		"row count mismatch": `
variables: [x, y]
mean: [0.0, 0.0]
covariance:
  - [1.0, 0.0]
`,
		"ragged row": `
variables: [x, y]
mean: [0.0, 0.0]
covariance:
  - [1.0, 0.0]
  - [0.0]
`,
		"asymmetric": `
variables: [x, y]
mean: [0.0, 0.0]
covariance:
  - [1.0, 0.3]
  - [0.2, 1.0]
`,
		"not positive definite": `
variables: [x, y]
mean: [0.0, 0.0]
covariance:
  - [1.0, 2.0]
  - [2.0, 1.0]
`,
		"mean length mismatch": `
variables: [x, y]
mean: [0.0]
covariance:
  - [1.0, 0.0]
  - [0.0, 1.0]
`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseTarget([]byte(doc))
			assert.Error(t, err)
			t.Logf("✓ rejected: %v", err)
		})
	}
}

func TestParseFloats(t *testing.T) {
	got, err := parseFloats(" 1, 0.5 ,-2 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5, -2}, got)

	got, err = parseFloats("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseFloats("1,two")
	assert.Error(t, err)
}
