// Package storecriterion holds built-in store-criterion add-ons: policies
// deciding whether one trial's request/response artifacts get written to
// disk.
package storecriterion

import (
	"context"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// OnlyDifferentConfig configures the OnlyDifferent add-on.
type OnlyDifferentConfig struct {
	// Statuses lists which trial statuses get stored. Defaults to
	// different only, matching the engine's built-in default policy —
	// same trials are the expected case and would otherwise dominate the
	// output directory. Failure trials never reach this stage at all
	// (they short-circuit before judgement), so including it here would
	// be a no-op.
	Statuses []model.Status
}

// OnlyDifferent is the default store-criterion policy: persist a trial's
// artifacts only when its status is one of Config.Statuses ("different"
// unless configured otherwise). Grounded directly on
// spec.md's default store policy; there's no teacher precedent for
// selective persistence (the teacher always writes its full baseline), so
// this is new engine-domain logic rather than an adaptation.
type OnlyDifferent struct {
	Config OnlyDifferentConfig
}

// NewOnlyDifferent constructs an OnlyDifferent add-on from raw config.
func NewOnlyDifferent(cfg map[string]interface{}) (*OnlyDifferent, error) {
	statuses := []model.Status{model.StatusDifferent}
	if raw, ok := cfg["statuses"].([]interface{}); ok && len(raw) > 0 {
		statuses = nil
		for _, s := range raw {
			if str, ok := s.(string); ok {
				statuses = append(statuses, model.Status(str))
			}
		}
	}
	return &OnlyDifferent{Config: OnlyDifferentConfig{Statuses: statuses}}, nil
}

func (o *OnlyDifferent) Exec(_ context.Context, p addon.StoreCriterionPayload, ref addon.StoreCriterionReference) (addon.StoreCriterionPayload, error) {
	for _, s := range o.Config.Statuses {
		if ref.Status == s {
			p.Stored = true
			return p, nil
		}
	}
	return p, nil
}
