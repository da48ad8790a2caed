package reqs2reqs

import (
	"context"
	"testing"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

func TestRepeatDuplicatesWholeList(t *testing.T) {
	r, err := NewRepeat(map[string]interface{}{"times": 3})
	if err != nil {
		t.Fatalf("NewRepeat: %v", err)
	}

	in := addon.Reqs2ReqsPayload{Requests: []model.Request{
		{Name: "a"}, {Name: "b"},
	}}
	out, err := r.Exec(context.Background(), in, addon.Reqs2ReqsReference{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(out.Requests) != 6 {
		t.Fatalf("expected 6 requests, got %d", len(out.Requests))
	}
	for i, want := range []string{"a", "b", "a", "b", "a", "b"} {
		if out.Requests[i].Name != want {
			t.Errorf("index %d: expected %q, got %q", i, want, out.Requests[i].Name)
		}
	}
}

func TestRepeatZeroTimesEmpties(t *testing.T) {
	r, err := NewRepeat(map[string]interface{}{"times": 0})
	if err != nil {
		t.Fatalf("NewRepeat: %v", err)
	}
	in := addon.Reqs2ReqsPayload{Requests: []model.Request{{Name: "a"}}}
	out, err := r.Exec(context.Background(), in, addon.Reqs2ReqsReference{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(out.Requests) != 0 {
		t.Errorf("expected empty result, got %d requests", len(out.Requests))
	}
}

func TestRepeatParsesFloatFromYAML(t *testing.T) {
	r, err := NewRepeat(map[string]interface{}{"times": float64(2)})
	if err != nil {
		t.Fatalf("NewRepeat: %v", err)
	}
	if r.Config.Times != 2 {
		t.Errorf("expected times 2, got %d", r.Config.Times)
	}
}
