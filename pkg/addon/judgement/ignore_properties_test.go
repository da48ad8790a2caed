package judgement

import (
	"context"
	"reflect"
	"testing"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

func ignorePropertiesTestConfig() map[string]interface{} {
	return map[string]interface{}{
		"ignores": []interface{}{
			map[string]interface{}{
				"title": "Check point 1",
				"conditions": []interface{}{
					map[string]interface{}{
						"path":  "/test1",
						"added": []interface{}{"<add><[0-1]>", "<add><2>"},
					},
					map[string]interface{}{
						"path":    "/test2",
						"changed": []interface{}{"<change><[0-1]>", "<change><2>"},
						"removed": []interface{}{"<remove><[0-1]>", "<remove><2>"},
					},
					map[string]interface{}{
						"added": []interface{}{"<add><3>"},
					},
				},
			},
			map[string]interface{}{
				"title": "Check point 2",
				"conditions": []interface{}{
					map[string]interface{}{
						"added": []interface{}{"<add><99>"},
					},
				},
			},
		},
	}
}

func execIgnoreProperties(t *testing.T, path string, diff model.DiffKeys) addon.JudgementPayload {
	t.Helper()
	ip, err := NewIgnoreProperties(ignorePropertiesTestConfig())
	if err != nil {
		t.Fatalf("NewIgnoreProperties: %v", err)
	}
	in := addon.JudgementPayload{
		DiffsByCognition: model.DiffsByCognition{model.UnknownCognition: diff},
		RegardAsSame:     false,
	}
	out, err := ip.Exec(context.Background(), in, addon.JudgementReference{Path: path})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	return out
}

func TestIgnorePropertiesOnlyConditionSame(t *testing.T) {
	out := execIgnoreProperties(t, "/test1", model.DiffKeys{Added: []string{"<add><0>", "<add><1>", "<add><2>"}})
	if !out.RegardAsSame {
		t.Error("expected regard_as_same to be true")
	}
}

func TestIgnorePropertiesOverConditionsSame(t *testing.T) {
	out := execIgnoreProperties(t, "/test1", model.DiffKeys{Added: []string{"<add><0>", "<add><1>", "<add><2>", "<add><3>"}})
	if !out.RegardAsSame {
		t.Error("expected regard_as_same to be true")
	}
}

func TestIgnorePropertiesOverIgnoresSame(t *testing.T) {
	out := execIgnoreProperties(t, "/test1", model.DiffKeys{Added: []string{"<add><0>", "<add><1>", "<add><2>", "<add><3>", "<add><99>"}})
	if !out.RegardAsSame {
		t.Error("expected regard_as_same to be true")
	}
}

func TestIgnorePropertiesOverIgnoresDifferent(t *testing.T) {
	out := execIgnoreProperties(t, "/test1", model.DiffKeys{Added: []string{"<add><0>", "<add><1>", "<add><2>", "<add><3>", "<add><4>", "<add><99>"}})
	if out.RegardAsSame {
		t.Error("expected regard_as_same to be false: <add><4> matches no condition")
	}
	remaining := out.DiffsByCognition[model.UnknownCognition]
	if !reflect.DeepEqual(remaining.Added, []string{"<add><4>"}) {
		t.Errorf("expected only <add><4> left unknown, got %v", remaining.Added)
	}
}

func TestIgnorePropertiesPathSpecifiedSame(t *testing.T) {
	out := execIgnoreProperties(t, "/test2", model.DiffKeys{
		Changed: []string{"<change><0>", "<change><1>", "<change><2>"},
		Removed: []string{"<remove><0>", "<remove><1>", "<remove><2>"},
	})
	if !out.RegardAsSame {
		t.Error("expected regard_as_same to be true")
	}
}

func TestIgnorePropertiesPathSpecifiedDifferent(t *testing.T) {
	// /test2's conditions only cover changed/removed, not added, so an
	// added diff at that path matches nothing and stays unknown.
	out := execIgnoreProperties(t, "/test2", model.DiffKeys{Added: []string{"<add><0>", "<add><1>", "<add><2>"}})
	if out.RegardAsSame {
		t.Error("expected regard_as_same to be false")
	}
}
