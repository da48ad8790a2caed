package dump

import (
	"context"

	"github.com/aymanbagabas/go-udiff"

	"github.com/blackcoderx/diffrun/pkg/addon"
)

// Udiff writes a unified text diff between this side's body and the other
// side's, as a "diff.txt" sidecar next to the stored response. It leaves
// Body untouched — this is a read-only comparison add-on, not a
// transform. Grounded on shared/diff.go's role as the teacher's one
// comparison tool, reusing the pack's real text-diff library for the
// human-readable sidecar that the structural pkg/diff comparator doesn't
// produce.
type Udiff struct{}

// NewUdiff constructs the Udiff add-on; it takes no configuration.
func NewUdiff(map[string]interface{}) (*Udiff, error) {
	return &Udiff{}, nil
}

func (u *Udiff) Exec(_ context.Context, p addon.DumpPayload) (addon.DumpPayload, error) {
	if len(p.OtherBody) == 0 || string(p.Body) == string(p.OtherBody) {
		return p, nil
	}

	text := udiff.Unified("one", "other", string(p.Body), string(p.OtherBody))
	if text == "" {
		return p, nil
	}

	if p.Sidecars == nil {
		p.Sidecars = map[string][]byte{}
	}
	p.Sidecars["diff.txt"] = []byte(text)

	return p, nil
}
