package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarunan/rocWMMA/wmma"
)

func TestParseDType(t *testing.T) {
	for _, s := range []string{"f16", "fp16", "float16", "half"} {
		dt, err := parseDType(s)
		require.NoError(t, err)
		assert.Equal(t, dtypes.Float16, dt)
	}
	dt, err := parseDType("bf16")
	require.NoError(t, err)
	assert.Equal(t, dtypes.BFloat16, dt)

	_, err = parseDType("quaternion")
	require.Error(t, err)
}

func TestParseLayout(t *testing.T) {
	l, err := parseLayout("col")
	require.NoError(t, err)
	assert.Equal(t, wmma.ColMajor, l)

	l, err = parseLayout("")
	require.NoError(t, err)
	assert.Equal(t, wmma.RowMajor, l)

	_, err = parseLayout("diagonal")
	require.Error(t, err)
}

func TestLoadSuiteAppliesDefaults(t *testing.T) {
	suite, err := loadSuite("testdata/suite.yaml")
	require.NoError(t, err)
	require.Len(t, suite.Problems, 2)

	first := suite.Problems[0]
	assert.Equal(t, "sgemm-64", first.Name)
	assert.Equal(t, 16, first.BlockM)
	assert.Equal(t, "float32", first.Input)
	assert.Equal(t, "float32", first.Output)
	assert.Equal(t, 5, first.Iters)
	assert.Equal(t, 1e-4, first.Tolerance)

	second := suite.Problems[1]
	assert.Equal(t, 32, second.BlockM)
	assert.Equal(t, 8, second.BlockK)
	assert.Equal(t, "float16", second.Input)
	assert.Equal(t, "float32", second.Output)
}

func TestLoadSuiteMissingFile(t *testing.T) {
	_, err := loadSuite("testdata/nope.yaml")
	require.Error(t, err)
}

func TestDefaultLaunchCoversOutput(t *testing.T) {
	dev := wmma.DefaultDevice()
	launch := defaultLaunch(dev, 100, 100, 16, 16)
	// 7x7 tiles under 2x2 waves per workgroup -> 4x4 workgroups.
	assert.Equal(t, wmma.Dim2{X: 4, Y: 4}, launch.GridDim)
	assert.Equal(t, wmma.Dim2{X: 2 * dev.WaveSize, Y: 2}, launch.BlockDim)

	// A single-tile output shrinks the workgroup too.
	launch = defaultLaunch(dev, 16, 16, 16, 16)
	assert.Equal(t, wmma.Dim2{X: 1, Y: 1}, launch.GridDim)
	assert.Equal(t, wmma.Dim2{X: dev.WaveSize, Y: 1}, launch.BlockDim)
}

func TestRunProblemValidates(t *testing.T) {
	var out bytes.Buffer
	spec := problemSpec{
		Name: "sgemm-test",
		M:    64, N: 64, K: 64,
		BlockM: 16, BlockN: 16, BlockK: 16,
		Input: "float32", Output: "float32", Compute: "float32",
		Alpha: 1.5, Beta: 0.25,
		Iters: 1, Validate: true, Tolerance: 1e-4,
	}
	require.NoError(t, runProblem(context.Background(), &out, spec))
	assert.Contains(t, out.String(), "validation OK")
}

func TestRunProblemRejectsUnknownTuple(t *testing.T) {
	var out bytes.Buffer
	spec := problemSpec{
		Name: "bad-tuple",
		M:    32, N: 32, K: 32,
		BlockM: 16, BlockN: 16, BlockK: 16,
		Input: "float64", Output: "float32", Compute: "float32",
		Alpha: 1, Iters: 1,
	}
	err := runProblem(context.Background(), &out, spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kernel instantiation")
}
