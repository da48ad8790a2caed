// Package dump holds built-in dump add-ons: transforms applied to a
// response's bytes immediately before they're written to disk.
package dump

import (
	"context"

	"github.com/blackcoderx/diffrun/pkg/addon"
)

// Raw writes a response's body unmodified, the same result an empty dump
// stage gives. It is only wired when configured by name; builtin.Resolve
// adds no dump add-on by default.
type Raw struct{}

// NewRaw constructs the Raw add-on; it takes no configuration.
func NewRaw(map[string]interface{}) (*Raw, error) {
	return &Raw{}, nil
}

func (r *Raw) Exec(_ context.Context, p addon.DumpPayload) (addon.DumpPayload, error) {
	return p, nil
}
