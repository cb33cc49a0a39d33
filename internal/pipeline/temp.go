package pipeline

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// tempManager records every temporary path created during a run so cleanup
// is guaranteed regardless of exit path. Concurrent artifact pipelines
// register paths as they create them; removal happens once, in a deferred
// step at the end of the run.
type tempManager struct {
	mu    sync.Mutex
	paths []string
}

// register records a path for end-of-run removal.
func (m *tempManager) register(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
}

// cleanupAll removes every registered path, best effort.
func (m *tempManager) cleanupAll(log zerolog.Logger) {
	m.mu.Lock()
	paths := m.paths
	m.paths = nil
	m.mu.Unlock()

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Str("path", p).Err(err).Msg("failed to remove temporary file")
		}
	}
}
