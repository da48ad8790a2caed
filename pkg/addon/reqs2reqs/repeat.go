// Package reqs2reqs holds built-in reqs2reqs add-ons.
package reqs2reqs

import (
	"context"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// RepeatConfig configures the Repeat add-on.
type RepeatConfig struct {
	Times int `yaml:"times" json:"times"`
}

// Repeat duplicates the whole request list Times-over, a direct port of
// jumeaux/addons/reqs2reqs/repeat.py: `payload.requests * self.config.times`.
type Repeat struct {
	Config RepeatConfig
}

// NewRepeat constructs a Repeat add-on from raw config.
func NewRepeat(cfg map[string]interface{}) (*Repeat, error) {
	times, _ := cfg["times"].(int)
	if times == 0 {
		if f, ok := cfg["times"].(float64); ok {
			times = int(f)
		}
	}
	return &Repeat{Config: RepeatConfig{Times: times}}, nil
}

func (r *Repeat) Exec(_ context.Context, p addon.Reqs2ReqsPayload, _ addon.Reqs2ReqsReference) (addon.Reqs2ReqsPayload, error) {
	times := r.Config.Times
	if times <= 0 {
		return addon.Reqs2ReqsPayload{Requests: nil}, nil
	}

	out := make([]model.Request, 0, len(p.Requests)*times)
	for i := 0; i < times; i++ {
		out = append(out, p.Requests...)
	}
	return addon.Reqs2ReqsPayload{Requests: out}, nil
}
