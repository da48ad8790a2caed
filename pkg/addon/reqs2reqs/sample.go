package reqs2reqs

import (
	"context"
	"math/rand"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// SampleConfig configures the Sample add-on.
type SampleConfig struct {
	Size int `yaml:"size" json:"size"`
	Seed int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Sample picks a random subset of Size requests, preserving their relative
// order (so downstream seq numbering stays meaningful). Grounded on
// spec.md's mention of "random samplers" as an example log2reqs/reqs2reqs
// add-on category — no teacher precedent, stdlib math/rand is sufficient.
type Sample struct {
	Config SampleConfig
	rng    *rand.Rand
}

// NewSample constructs a Sample add-on from raw config.
func NewSample(cfg map[string]interface{}) (*Sample, error) {
	var sc SampleConfig
	if v, ok := cfg["size"].(int); ok {
		sc.Size = v
	} else if f, ok := cfg["size"].(float64); ok {
		sc.Size = int(f)
	}
	if v, ok := cfg["seed"].(int); ok {
		sc.Seed = int64(v)
	} else if f, ok := cfg["seed"].(float64); ok {
		sc.Seed = int64(f)
	}
	src := rand.NewSource(sc.Seed)
	return &Sample{Config: sc, rng: rand.New(src)}, nil
}

func (s *Sample) Exec(_ context.Context, p addon.Reqs2ReqsPayload, _ addon.Reqs2ReqsReference) (addon.Reqs2ReqsPayload, error) {
	if s.Config.Size <= 0 || s.Config.Size >= len(p.Requests) {
		return p, nil
	}

	indices := s.rng.Perm(len(p.Requests))[:s.Config.Size]
	sortInts(indices)

	out := make([]model.Request, len(indices))
	for i, idx := range indices {
		out[i] = p.Requests[idx]
	}
	return addon.Reqs2ReqsPayload{Requests: out}, nil
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
