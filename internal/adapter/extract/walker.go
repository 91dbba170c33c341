package extract

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker finds source documents under a root directory, filtered by
// include/exclude glob patterns. Results are sorted for deterministic
// ingestion order.
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker creates a walker with the given glob patterns.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*.pdf"}
	}
	return &Walker{includes: includes, excludes: excludes}
}

// Walk returns the matching file paths under root.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if w.matchesAny(w.excludes, relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.matchesAny(w.includes, relPath) && !w.matchesAny(w.excludes, relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (w *Walker) matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
