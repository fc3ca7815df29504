package employee

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandUploads resolves upload paths and ** glob patterns into a sorted,
// de-duplicated list of files.
func ExpandUploads(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	files := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		matches := []string{pattern}
		if containsGlob(pattern) {
			var err error
			matches, err = doublestar.FilepathGlob(filepath.Clean(pattern))
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", pattern, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match pattern: %s", pattern)
			}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if info.IsDir() || seen[match] {
				continue
			}
			seen[match] = true
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
