package builtin

import (
	"context"
	"testing"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// TestResolveStoreCriterionDefaultsToOnlyDifferent pins down spec.md §4.2
// step 9's default policy: with no store_criterion add-on configured, a
// trial is stored iff its status is "different".
func TestResolveStoreCriterionDefaultsToOnlyDifferent(t *testing.T) {
	stages, err := Resolve(model.AddonsConfig{}, SkipTags{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(stages.StoreCriterion) != 1 {
		t.Fatalf("expected one default store_criterion add-on, got %d", len(stages.StoreCriterion))
	}

	for _, tc := range []struct {
		status model.Status
		stored bool
	}{
		{model.StatusSame, false},
		{model.StatusDifferent, true},
	} {
		p, err := stages.StoreCriterion[0].Exec(context.Background(),
			addon.StoreCriterionPayload{},
			addon.StoreCriterionReference{Status: tc.status})
		if err != nil {
			t.Fatalf("Exec: %v", err)
		}
		if p.Stored != tc.stored {
			t.Errorf("status %q: expected stored=%v, got %v", tc.status, tc.stored, p.Stored)
		}
	}
}

// TestResolveStoreCriterionExplicitConfigReplacesDefault confirms that
// configuring only_different explicitly doesn't double up with the
// implicit default.
func TestResolveStoreCriterionExplicitConfigReplacesDefault(t *testing.T) {
	stages, err := Resolve(model.AddonsConfig{
		StoreCriterion: []model.AddonEntry{{Name: "only_different"}},
	}, SkipTags{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(stages.StoreCriterion) != 1 {
		t.Fatalf("expected exactly one store_criterion add-on, got %d", len(stages.StoreCriterion))
	}
}
