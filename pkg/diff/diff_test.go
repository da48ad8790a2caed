package diff

import (
	"reflect"
	"testing"
)

func TestCompareIdentical(t *testing.T) {
	one := map[string]interface{}{"a": 1.0}
	other := map[string]interface{}{"a": 1.0}

	added, changed, removed := Keys(Compare(one, other))
	if len(added)+len(changed)+len(removed) != 0 {
		t.Fatalf("expected no diffs, got added=%v changed=%v removed=%v", added, changed, removed)
	}
}

func TestCompareItemAdded(t *testing.T) {
	one := map[string]interface{}{"items": []interface{}{1.0, 2.0, 3.0}}
	other := map[string]interface{}{"items": []interface{}{1.0, 2.0, 3.0, 4.0}}

	added, changed, removed := Keys(Compare(one, other))
	if !reflect.DeepEqual(added, []string{"<root><items><3>"}) {
		t.Fatalf("added = %v", added)
	}
	if len(changed) != 0 || len(removed) != 0 {
		t.Fatalf("expected no changed/removed, got changed=%v removed=%v", changed, removed)
	}
}

func TestCompareTypeChanged(t *testing.T) {
	one := map[string]interface{}{"x": "1"}
	other := map[string]interface{}{"x": 1.0}

	added, changed, removed := Keys(Compare(one, other))
	if !reflect.DeepEqual(changed, []string{"<root><x>"}) {
		t.Fatalf("changed = %v", changed)
	}
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("expected no added/removed, got added=%v removed=%v", added, removed)
	}
}

func TestCompareSymmetry(t *testing.T) {
	one := map[string]interface{}{
		"keep":    1.0,
		"removed": "gone",
	}
	other := map[string]interface{}{
		"keep":  1.0,
		"added": "new",
	}

	addedFwd, changedFwd, removedFwd := Keys(Compare(one, other))
	addedRev, changedRev, removedRev := Keys(Compare(other, one))

	if !reflect.DeepEqual(addedFwd, removedRev) {
		t.Fatalf("added(one,other)=%v should equal removed(other,one)=%v", addedFwd, removedRev)
	}
	if !reflect.DeepEqual(removedFwd, addedRev) {
		t.Fatalf("removed(one,other)=%v should equal added(other,one)=%v", removedFwd, addedRev)
	}
	if len(changedFwd) != len(changedRev) {
		t.Fatalf("changed sets should be the same size in both directions: %v vs %v", changedFwd, changedRev)
	}
}

func TestKeysSortedLexicographically(t *testing.T) {
	one := map[string]interface{}{"b": 1.0, "a": 2.0, "c": 3.0}
	other := map[string]interface{}{"b": "x", "a": "y", "c": "z"}

	_, changed, _ := Keys(Compare(one, other))
	for i := 1; i < len(changed); i++ {
		if changed[i-1] > changed[i] {
			t.Fatalf("changed keys not sorted: %v", changed)
		}
	}
}
