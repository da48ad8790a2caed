// Package engine dispatches requests against both access points, compares
// the responses, and assembles the resulting trials into a report.
package engine

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/blackcoderx/diffrun/pkg/model"
)

// BuildURL resolves the absolute URL one access point receives for one
// request: the access point's own path rewrite and query customization
// applied on top of the request's own path and query string. Grounded
// directly on spec.md's per-access-point URL construction step — there's
// no teacher precedent for rewriting outbound requests per target, since
// the teacher always dispatches to a single base_url.
func BuildURL(ap model.AccessPoint, req model.Request) (string, error) {
	path := req.Path
	if ap.Path != nil && ap.Path.Before != "" {
		re, err := regexp.Compile(ap.Path.Before)
		if err != nil {
			return "", err
		}
		path = re.ReplaceAllString(path, ap.Path.After)
	}

	qs := cloneQS(req.QS)
	if ap.Query != nil {
		// spec.md §4.2 step 1: merge overwrite first, then drop remove keys,
		// so a key listed in both ends up removed rather than re-added.
		applyOverwrite(qs, ap.Query.Overwrite)
		applyRemove(qs, ap.Query.Remove)
	}

	full := strings.TrimRight(ap.Host, "/")
	if !strings.HasPrefix(path, "/") {
		full += "/"
	}
	full += path

	if encoded := encodeQS(qs); encoded != "" {
		full += "?" + encoded
	}

	return full, nil
}

func cloneQS(qs map[string][]string) map[string][]string {
	out := make(map[string][]string, len(qs))
	for k, v := range qs {
		values := make([]string, len(v))
		copy(values, v)
		out[k] = values
	}
	return out
}

// applyRemove deletes query keys. A key suffixed "/i" is matched against
// qs's keys case-insensitively; every other key must match exactly.
func applyRemove(qs map[string][]string, remove []string) {
	for _, key := range remove {
		if name, ci := caseInsensitiveKey(key); ci {
			for existing := range qs {
				if strings.EqualFold(existing, name) {
					delete(qs, existing)
				}
			}
			continue
		}
		delete(qs, key)
	}
}

// applyOverwrite sets (or replaces) query keys. As with Remove, a "/i"
// suffix matches existing keys case-insensitively; the stripped name is
// used when nothing already in qs matches.
func applyOverwrite(qs map[string][]string, overwrite map[string][]string) {
	for key, values := range overwrite {
		if name, ci := caseInsensitiveKey(key); ci {
			matched := false
			for existing := range qs {
				if strings.EqualFold(existing, name) {
					qs[existing] = values
					matched = true
				}
			}
			if !matched {
				qs[name] = values
			}
			continue
		}
		qs[key] = values
	}
}

func caseInsensitiveKey(key string) (name string, ci bool) {
	if strings.HasSuffix(key, "/i") {
		return strings.TrimSuffix(key, "/i"), true
	}
	return key, false
}

// encodeQS produces a doseq-style query string: every value of a
// multi-valued key repeats the key, matching Python's urlencode(doseq=True).
func encodeQS(qs map[string][]string) string {
	if len(qs) == 0 {
		return ""
	}
	values := url.Values{}
	for k, vs := range qs {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	return values.Encode()
}
