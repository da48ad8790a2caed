// Package report assembles a run's Summary/Report documents and persists
// trial artifacts under the session's response directory. Grounded on
// original_source/jumeaux/executor.py's exec() tail (status histogram via
// group-by, directory layout, symlink swap) and
// regression_watchdog/baseline.go's os.MkdirAll + json persistence idiom.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// SessionKey derives the directory name one run's artifacts live under:
// sha256(now + json(args)), matching the original's hash_from_args. now is
// passed in rather than read from time.Now() so callers control it (and so
// this stays deterministic in tests).
func SessionKey(now time.Time, args interface{}) (string, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(now.String() + string(argsJSON)))
	return hex.EncodeToString(sum[:]), nil
}
