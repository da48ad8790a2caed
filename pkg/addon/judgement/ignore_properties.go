// Package judgement holds built-in judgement add-ons: ways of revising the
// diff-keys-by-cognition classification and the same/different verdict
// before a trial's status is decided.
package judgement

import (
	"context"
	"regexp"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

const ignoredCognition = "ignored"

// IgnoreCondition names one set of acceptable diffs, optionally scoped to a
// single request path. A condition with no Path applies to every trial.
type IgnoreCondition struct {
	Path    string
	Added   []string
	Changed []string
	Removed []string
}

// IgnoreGroup is one named bundle of conditions, purely for config
// readability — it plays no role in matching beyond grouping conditions.
type IgnoreGroup struct {
	Title      string
	Conditions []IgnoreCondition
}

// IgnorePropertiesConfig configures the IgnoreProperties add-on.
type IgnorePropertiesConfig struct {
	Ignores []IgnoreGroup
}

// IgnoreProperties reclassifies diff keys that match a known, accepted
// pattern out of the "unknown" cognition bucket and into "ignored". If
// every key ends up ignored, the trial is regarded as same. Each pattern is
// matched as a full-string regular expression against the XPath-like key,
// so '<add><[0-1]>' accepts both '<add><0>' and '<add><1>'. Grounded
// directly on jumeaux/addons/judgement/ignore_properties.py's behavior, as
// recovered from its test suite (the implementation itself isn't in the
// retrieved source).
type IgnoreProperties struct {
	Config   IgnorePropertiesConfig
	patterns map[string][]*regexp.Regexp
}

// NewIgnoreProperties constructs an IgnoreProperties add-on from raw config.
func NewIgnoreProperties(cfg map[string]interface{}) (*IgnoreProperties, error) {
	var ipc IgnorePropertiesConfig

	rawGroups, _ := cfg["ignores"].([]interface{})
	for _, rg := range rawGroups {
		groupMap, ok := rg.(map[string]interface{})
		if !ok {
			continue
		}
		group := IgnoreGroup{}
		if t, ok := groupMap["title"].(string); ok {
			group.Title = t
		}
		rawConditions, _ := groupMap["conditions"].([]interface{})
		for _, rc := range rawConditions {
			condMap, ok := rc.(map[string]interface{})
			if !ok {
				continue
			}
			cond := IgnoreCondition{}
			if path, ok := condMap["path"].(string); ok {
				cond.Path = path
			}
			cond.Added = stringSlice(condMap["added"])
			cond.Changed = stringSlice(condMap["changed"])
			cond.Removed = stringSlice(condMap["removed"])
			group.Conditions = append(group.Conditions, cond)
		}
		ipc.Ignores = append(ipc.Ignores, group)
	}

	ip := &IgnoreProperties{Config: ipc}
	ip.patterns = map[string][]*regexp.Regexp{}
	return ip, nil
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (ip *IgnoreProperties) Exec(_ context.Context, p addon.JudgementPayload, ref addon.JudgementReference) (addon.JudgementPayload, error) {
	unknown, ok := p.DiffsByCognition[model.UnknownCognition]
	if !ok {
		return p, nil
	}

	remaining := model.DiffKeys{}
	ignored := p.DiffsByCognition[ignoredCognition]

	matchAgainst := func(keys []string, category func(IgnoreCondition) []string) (kept, moved []string) {
		for _, key := range keys {
			if ip.matches(ref.Path, key, category) {
				moved = append(moved, key)
			} else {
				kept = append(kept, key)
			}
		}
		return kept, moved
	}

	var movedAdded, movedChanged, movedRemoved []string
	remaining.Added, movedAdded = matchAgainst(unknown.Added, func(c IgnoreCondition) []string { return c.Added })
	remaining.Changed, movedChanged = matchAgainst(unknown.Changed, func(c IgnoreCondition) []string { return c.Changed })
	remaining.Removed, movedRemoved = matchAgainst(unknown.Removed, func(c IgnoreCondition) []string { return c.Removed })

	ignored.Added = append(ignored.Added, movedAdded...)
	ignored.Changed = append(ignored.Changed, movedChanged...)
	ignored.Removed = append(ignored.Removed, movedRemoved...)

	if p.DiffsByCognition == nil {
		p.DiffsByCognition = model.DiffsByCognition{}
	}
	p.DiffsByCognition[model.UnknownCognition] = remaining
	p.DiffsByCognition[ignoredCognition] = ignored

	if remaining.IsEmpty() {
		p.RegardAsSame = true
	}

	return p, nil
}

func (ip *IgnoreProperties) matches(path, key string, category func(IgnoreCondition) []string) bool {
	for _, group := range ip.Config.Ignores {
		for _, cond := range group.Conditions {
			if cond.Path != "" && cond.Path != path {
				continue
			}
			for _, pattern := range category(cond) {
				if ip.compile(pattern).MatchString(key) {
					return true
				}
			}
		}
	}
	return false
}

func (ip *IgnoreProperties) compile(pattern string) *regexp.Regexp {
	if cached, ok := ip.patterns[pattern]; ok {
		return cached[0]
	}
	re := regexp.MustCompile("^" + pattern + "$")
	ip.patterns[pattern] = []*regexp.Regexp{re}
	return re
}
