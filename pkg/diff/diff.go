// Package diff computes a structural difference between two JSON-like
// trees (map[string]any / []any / scalar), classified into the four edit
// kinds spec.md requires and normalized into XPath-like keys.
//
// The recursion shape is grounded on the teacher's own
// shared.CompareResponsesTool.compareJSON: a type switch over
// map[string]interface{} / []interface{} / scalar, threading a path string
// through the recursion. Generalized here from a boolean match/diff-list
// result into the four-kind edit classification (type_changes,
// values_changed, item added, item removed) spec.md's judgement stage
// needs, and into a single set of XPath-like keys rather than free text.
package diff

import (
	"fmt"
	"reflect"
	"sort"
)

// EditKind distinguishes the four kinds of structural edit.
type EditKind int

const (
	TypeChanged EditKind = iota
	ValueChanged
	ItemAdded
	ItemRemoved
)

// Edit is one located difference between two trees.
type Edit struct {
	Kind EditKind
	Path string // XPath-like, e.g. "<root><items><3>"
}

// Result is every edit found between two trees, not yet grouped/sorted.
type Result struct {
	Edits []Edit
}

// Compare walks two JSON-like trees and returns every structural edit
// between them. Both values are expected to be the output of
// encoding/json.Unmarshal into `any` (so numbers are float64, objects are
// map[string]interface{}, arrays are []interface{}).
func Compare(one, other interface{}) Result {
	var r Result
	walk(one, other, "<root>", &r)
	return r
}

func walk(a, b interface{}, path string, r *Result) {
	if a == nil && b == nil {
		return
	}
	if a == nil || b == nil {
		r.Edits = append(r.Edits, Edit{Kind: ValueChanged, Path: path})
		return
	}

	aMap, aIsMap := a.(map[string]interface{})
	bMap, bIsMap := b.(map[string]interface{})
	if aIsMap || bIsMap {
		if !aIsMap || !bIsMap {
			r.Edits = append(r.Edits, Edit{Kind: TypeChanged, Path: path})
			return
		}
		walkMap(aMap, bMap, path, r)
		return
	}

	aArr, aIsArr := a.([]interface{})
	bArr, bIsArr := b.([]interface{})
	if aIsArr || bIsArr {
		if !aIsArr || !bIsArr {
			r.Edits = append(r.Edits, Edit{Kind: TypeChanged, Path: path})
			return
		}
		walkArray(aArr, bArr, path, r)
		return
	}

	// Scalars.
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		r.Edits = append(r.Edits, Edit{Kind: TypeChanged, Path: path})
		return
	}
	if a != b {
		r.Edits = append(r.Edits, Edit{Kind: ValueChanged, Path: path})
	}
}

func walkMap(a, b map[string]interface{}, path string, r *Result) {
	for k, av := range a {
		childPath := path + "<" + k + ">"
		bv, ok := b[k]
		if !ok {
			r.Edits = append(r.Edits, Edit{Kind: ItemRemoved, Path: childPath})
			continue
		}
		walk(av, bv, childPath, r)
	}
	for k, bv := range b {
		if _, ok := a[k]; ok {
			continue
		}
		_ = bv
		r.Edits = append(r.Edits, Edit{Kind: ItemAdded, Path: path + "<" + k + ">"})
	}
}

func walkArray(a, b []interface{}, path string, r *Result) {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		walk(a[i], b[i], fmt.Sprintf("%s<%d>", path, i), r)
	}
	for i := minLen; i < len(a); i++ {
		r.Edits = append(r.Edits, Edit{Kind: ItemRemoved, Path: fmt.Sprintf("%s<%d>", path, i)})
	}
	for i := minLen; i < len(b); i++ {
		r.Edits = append(r.Edits, Edit{Kind: ItemAdded, Path: fmt.Sprintf("%s<%d>", path, i)})
	}
}

// Keys groups a Result's edits into the three DiffKeys lists (changed =
// type_changes ∪ values_changed, added, removed), de-duplicated and
// sorted lexicographically, exactly as spec.md §4.2 step 7 requires.
func Keys(r Result) (added, changed, removed []string) {
	addedSet := map[string]struct{}{}
	changedSet := map[string]struct{}{}
	removedSet := map[string]struct{}{}

	for _, e := range r.Edits {
		switch e.Kind {
		case TypeChanged, ValueChanged:
			changedSet[e.Path] = struct{}{}
		case ItemAdded:
			addedSet[e.Path] = struct{}{}
		case ItemRemoved:
			removedSet[e.Path] = struct{}{}
		}
	}

	added = sortedKeys(addedSet)
	changed = sortedKeys(changedSet)
	removed = sortedKeys(removedSet)
	return
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
