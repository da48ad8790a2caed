// Package builtin resolves configured add-on names into instances and
// assembles an addon.Stages value. It's the one package allowed to import
// every concrete add-on subpackage, which is exactly why pkg/addon itself
// can't hold this logic without creating an import cycle (each concrete
// add-on package imports pkg/addon for the payload/reference contracts).
package builtin

import (
	"fmt"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/addon/dump"
	"github.com/blackcoderx/diffrun/pkg/addon/final"
	"github.com/blackcoderx/diffrun/pkg/addon/judgement"
	"github.com/blackcoderx/diffrun/pkg/addon/log2reqs"
	"github.com/blackcoderx/diffrun/pkg/addon/reqs2reqs"
	"github.com/blackcoderx/diffrun/pkg/addon/storecriterion"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// SkipTags is the set of add-on tags to exclude, mirroring the original's
// --skip-addon-tag CLI flag: any configured add-on carrying one of these
// tags is left out of the resolved Stages.
type SkipTags map[string]struct{}

func (s SkipTags) skips(tags []string) bool {
	for _, t := range tags {
		if _, ok := s[t]; ok {
			return true
		}
	}
	return false
}

// Resolve builds an addon.Stages from configuration, instantiating every
// entry whose name is registered below and whose tags don't intersect skip.
func Resolve(cfg model.AddonsConfig, skip SkipTags) (addon.Stages, error) {
	var stages addon.Stages
	var err error

	if stages.Log2Reqs, err = resolveLog2Reqs(cfg.Log2Reqs, skip); err != nil {
		return stages, err
	}
	if stages.Reqs2Reqs, err = resolveReqs2Reqs(cfg.Reqs2Reqs, skip); err != nil {
		return stages, err
	}
	if stages.Judgement, err = resolveJudgement(cfg.Judgement, skip); err != nil {
		return stages, err
	}
	if stages.StoreCriterion, err = resolveStoreCriterion(cfg.StoreCriterion, skip); err != nil {
		return stages, err
	}
	if stages.Dump, err = resolveDump(cfg.Dump, skip); err != nil {
		return stages, err
	}
	if stages.Final, err = resolveFinal(cfg.Final, skip); err != nil {
		return stages, err
	}

	// Res2Res, Res2Dict and DidChallenge have no built-in add-ons of
	// their own yet (the engine supplies baseline behavior for each
	// directly); a future add-on package only needs a case added here.
	return stages, nil
}

func resolveLog2Reqs(entries []model.AddonEntry, skip SkipTags) ([]addon.Log2ReqsAddOn, error) {
	var out []addon.Log2ReqsAddOn
	for _, e := range entries {
		if skip.skips(e.Tags) {
			continue
		}
		switch e.Name {
		case "csv":
			a, err := log2reqs.NewCSV(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case "postman":
			a, err := log2reqs.NewPostman(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case "openapi":
			a, err := log2reqs.NewOpenAPI(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unknown log2reqs add-on %q", e.Name)
		}
	}
	return out, nil
}

func resolveReqs2Reqs(entries []model.AddonEntry, skip SkipTags) ([]addon.Reqs2ReqsAddOn, error) {
	var out []addon.Reqs2ReqsAddOn
	for _, e := range entries {
		if skip.skips(e.Tags) {
			continue
		}
		switch e.Name {
		case "repeat":
			a, err := reqs2reqs.NewRepeat(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case "sample":
			a, err := reqs2reqs.NewSample(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unknown reqs2reqs add-on %q", e.Name)
		}
	}
	return out, nil
}

func resolveJudgement(entries []model.AddonEntry, skip SkipTags) ([]addon.JudgementAddOn, error) {
	var out []addon.JudgementAddOn
	for _, e := range entries {
		if skip.skips(e.Tags) {
			continue
		}
		switch e.Name {
		case "ignore_properties":
			a, err := judgement.NewIgnoreProperties(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case "schema":
			a, err := judgement.NewSchemaConformance(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case "ai_classify":
			a, err := judgement.NewAIClassify(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unknown judgement add-on %q", e.Name)
		}
	}
	return out, nil
}

func resolveStoreCriterion(entries []model.AddonEntry, skip SkipTags) ([]addon.StoreCriterionAddOn, error) {
	var out []addon.StoreCriterionAddOn
	for _, e := range entries {
		if skip.skips(e.Tags) {
			continue
		}
		switch e.Name {
		case "only_different":
			a, err := storecriterion.NewOnlyDifferent(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unknown store_criterion add-on %q", e.Name)
		}
	}
	if len(out) == 0 {
		// spec.md §4.2 step 9: with no store_criterion add-on configured,
		// the default policy stores iff the trial's status is "different".
		a, _ := storecriterion.NewOnlyDifferent(nil)
		out = append(out, a)
	}
	return out, nil
}

func resolveDump(entries []model.AddonEntry, skip SkipTags) ([]addon.DumpAddOn, error) {
	var out []addon.DumpAddOn
	for _, e := range entries {
		if skip.skips(e.Tags) {
			continue
		}
		switch e.Name {
		case "raw":
			a, err := dump.NewRaw(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case "udiff":
			a, err := dump.NewUdiff(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unknown dump add-on %q", e.Name)
		}
	}
	return out, nil
}

func resolveFinal(entries []model.AddonEntry, skip SkipTags) ([]addon.FinalAddOn, error) {
	var out []addon.FinalAddOn
	for _, e := range entries {
		if skip.skips(e.Tags) {
			continue
		}
		switch e.Name {
		case "webhook":
			a, err := final.NewWebhook(e.Config)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unknown final add-on %q", e.Name)
		}
	}
	return out, nil
}
