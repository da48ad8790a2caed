package report

import (
	"os"
	"path/filepath"
)

// FileWriter writes trial artifacts under responseDir/key/relPath,
// creating parent directories as needed. Grounded on
// regression_watchdog/baseline.go's os.MkdirAll + write-whole-file
// persistence idiom.
type FileWriter struct {
	ResponseDir string
}

// PrepareSessionDirs creates the four per-side artifact subdirectories
// before dispatch starts, matching the original's make_dir calls ahead of
// the challenge loop.
func (w FileWriter) PrepareSessionDirs(key string) error {
	for _, sub := range []string{"one", "other", "one-props", "other-props"} {
		if err := os.MkdirAll(filepath.Join(w.ResponseDir, key, sub), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// WriteTrialArtifact implements engine.ArtifactWriter.
func (w FileWriter) WriteTrialArtifact(key, relPath string, body []byte) error {
	full := filepath.Join(w.ResponseDir, key, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, body, 0o644)
}

// SwapLatest points responseDir/latest at key, removing any previous
// target first. Falls back to a plain pointer file (containing the key)
// on platforms where symlinks aren't available, per spec's latest-pointer
// fallback.
func (w FileWriter) SwapLatest(key string) error {
	latest := filepath.Join(w.ResponseDir, "latest")
	_ = os.Remove(latest)

	if err := os.Symlink(key, latest); err != nil {
		return os.WriteFile(latest, []byte(key), 0o644)
	}
	return nil
}
