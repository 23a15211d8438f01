package filetext

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// artifactPrefix marks temporary conversion artifacts so the orphan sweep can
// find ones a killed process left behind.
const artifactPrefix = "filetext-conv-"

// artifactMaxAge is how old an orphaned artifact must be before the sweep
// removes it; younger files may belong to a live concurrent engine.
const artifactMaxAge = time.Hour

// materializeArtifact copies a file's bytes into a scoped temporary artifact
// with the given suffix. The name embeds a fresh UUID, so concurrent calls can
// never collide. The returned cleanup removes the artifact; callers defer it
// immediately so the artifact dies on every exit path of the conversion step.
func (e *Engine) materializeArtifact(path, suffix string) (string, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read source: %w", err)
	}
	artifact := filepath.Join(e.cfg.TempDir, artifactPrefix+uuid.NewString()+suffix)
	if err := os.WriteFile(artifact, data, 0o600); err != nil {
		return "", nil, fmt.Errorf("write artifact: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("remove conversion artifact", "path", artifact, "error", err)
		}
	}
	return artifact, cleanup, nil
}

// sweepOrphanedArtifacts removes stale conversion artifacts left by an
// interrupted process. Best effort: any error is logged and ignored.
func sweepOrphanedArtifacts(dir string, logger *slog.Logger) {
	matches, err := filepath.Glob(filepath.Join(dir, artifactPrefix+"*"))
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-artifactMaxAge)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(m); err != nil {
			logger.Debug("sweep orphaned artifact", "path", m, "error", err)
		} else {
			logger.Debug("removed orphaned artifact", "path", m)
		}
	}
}
