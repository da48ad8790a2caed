package engine

import (
	"testing"

	"github.com/blackcoderx/diffrun/pkg/model"
)

// spec.md §8 scenario 5: multi-valued query encoding.
func TestBuildURLMultiValuedQuery(t *testing.T) {
	ap := model.AccessPoint{Name: "one", Host: "http://host"}
	req := model.Request{
		Path: "/p",
		QS:   map[string][]string{"q1": {"1"}, "q2": {"2-1", "2-2"}},
	}

	got, err := BuildURL(ap, req)
	if err != nil {
		t.Fatalf("BuildURL: %v", err)
	}
	want := "http://host/p?q1=1&q2=2-1&q2=2-2"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// spec.md §8 scenario 6: query customization with a case-insensitive
// overwrite key only affects the configured side.
func TestBuildURLQueryOverwriteCaseInsensitive(t *testing.T) {
	one := model.AccessPoint{
		Name: "one", Host: "http://host-one",
		Query: &model.QueryCustomization{Overwrite: map[string][]string{"Q1/i": {"z"}}},
	}
	other := model.AccessPoint{Name: "other", Host: "http://host-other"}
	req := model.Request{Path: "/p", QS: map[string][]string{"q1": {"1"}}}

	gotOne, err := BuildURL(one, req)
	if err != nil {
		t.Fatalf("BuildURL(one): %v", err)
	}
	if want := "http://host-one/p?q1=z"; gotOne != want {
		t.Errorf("expected %q, got %q", want, gotOne)
	}

	gotOther, err := BuildURL(other, req)
	if err != nil {
		t.Fatalf("BuildURL(other): %v", err)
	}
	if want := "http://host-other/p?q1=1"; gotOther != want {
		t.Errorf("expected other side unaffected: %q, got %q", want, gotOther)
	}
}

// A key overwritten and then also listed in remove must end up removed:
// spec.md §4.2 step 1 applies overwrite first, then remove filters the
// result, so remove always has the final say on a contested key.
func TestBuildURLOverwriteThenRemoveOnSameKey(t *testing.T) {
	ap := model.AccessPoint{
		Name: "one", Host: "http://host",
		Query: &model.QueryCustomization{
			Overwrite: map[string][]string{"q1": {"z"}},
			Remove:    []string{"q1"},
		},
	}
	req := model.Request{Path: "/p", QS: map[string][]string{"q1": {"1"}, "q2": {"2"}}}

	got, err := BuildURL(ap, req)
	if err != nil {
		t.Fatalf("BuildURL: %v", err)
	}
	want := "http://host/p?q2=2"
	if got != want {
		t.Errorf("expected q1 removed despite the overwrite, got %q (want %q)", got, want)
	}
}

// Same interaction as above but through the case-insensitive "/i" key
// matching both applyOverwrite and applyRemove support.
func TestBuildURLOverwriteThenRemoveCaseInsensitive(t *testing.T) {
	ap := model.AccessPoint{
		Name: "one", Host: "http://host",
		Query: &model.QueryCustomization{
			Overwrite: map[string][]string{"Q1/i": {"z"}},
			Remove:    []string{"Q1/i"},
		},
	}
	req := model.Request{Path: "/p", QS: map[string][]string{"q1": {"1"}}}

	got, err := BuildURL(ap, req)
	if err != nil {
		t.Fatalf("BuildURL: %v", err)
	}
	if want := "http://host/p"; got != want {
		t.Errorf("expected empty query string, got %q (want %q)", got, want)
	}
}

func TestBuildURLPathRewrite(t *testing.T) {
	ap := model.AccessPoint{
		Name: "one", Host: "http://host",
		Path: &model.PathRewrite{Before: "^/old/(.+)$", After: "/new/$1"},
	}
	req := model.Request{Path: "/old/thing"}

	got, err := BuildURL(ap, req)
	if err != nil {
		t.Fatalf("BuildURL: %v", err)
	}
	if want := "http://host/new/thing"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildURLEmptyQueryHasNoQuestionMark(t *testing.T) {
	ap := model.AccessPoint{Name: "one", Host: "http://host"}
	req := model.Request{Path: "/p"}

	got, err := BuildURL(ap, req)
	if err != nil {
		t.Fatalf("BuildURL: %v", err)
	}
	if want := "http://host/p"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
