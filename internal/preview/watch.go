package preview

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// watchSet maps watched roots to the rebuild they trigger.
type watchSet struct {
	static string
	pages  []string
}

// classify returns the rebuild target for a changed path.
func (w watchSet) classify(p string) target {
	if w.static != "" && within(w.static, p) {
		return targetStatic
	}
	for _, root := range w.pages {
		if within(root, p) {
			return targetPages
		}
	}
	return 0
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w watchSet) roots() []string {
	roots := make([]string, 0, len(w.pages)+1)
	if w.static != "" {
		roots = append(roots, w.static)
	}
	return append(roots, w.pages...)
}

func newWatcher(set watchSet, logger *slog.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range set.roots() {
		if st, err := os.Stat(root); err != nil || !st.IsDir() {
			logger.Debug("Skipping missing watch root", logfields.Path(root))
			continue
		}
		addDirsRecursive(watcher, root, logger)
	}
	return watcher, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports filesystem events that never trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
