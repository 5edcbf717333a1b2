package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// suiteFile is a YAML-described list of GEMM instantiations:
//
//	problems:
//	  - name: sgemm-1k
//	    m: 1024
//	    n: 1024
//	    k: 1024
//	    block_m: 16
//	    block_n: 16
//	    block_k: 16
//	    input: float32
//	    output: float32
//	    compute: float32
//	    alpha: 1
//	    beta: 0
//	    validate: true
//	    tolerance: 1e-4
type suiteFile struct {
	Problems []problemSpec `yaml:"problems"`
}

func loadSuite(path string) (*suiteFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading suite %q", path)
	}
	var suite suiteFile
	if err := yaml.Unmarshal(raw, &suite); err != nil {
		return nil, errors.Wrapf(err, "parsing suite %q", path)
	}
	if len(suite.Problems) == 0 {
		return nil, errors.Errorf("suite %q lists no problems", path)
	}
	for i := range suite.Problems {
		applyDefaults(&suite.Problems[i], i)
	}
	return &suite, nil
}

// applyDefaults fills the optional fields of a suite entry so that a
// minimal entry (just m/n/k) runs an SGEMM with 16x16x16 blocks.
func applyDefaults(spec *problemSpec, index int) {
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("problem-%d", index)
	}
	if spec.BlockM == 0 {
		spec.BlockM = 16
	}
	if spec.BlockN == 0 {
		spec.BlockN = 16
	}
	if spec.BlockK == 0 {
		spec.BlockK = 16
	}
	if spec.Input == "" {
		spec.Input = "float32"
	}
	if spec.Output == "" {
		spec.Output = spec.Input
	}
	if spec.Compute == "" {
		spec.Compute = "float32"
	}
	if spec.Iters == 0 {
		spec.Iters = 5
	}
	if spec.Tolerance == 0 {
		spec.Tolerance = 1e-4
	}
}
