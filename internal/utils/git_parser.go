package utils

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ParsePathList turns one-path-per-line tool output (git diff --name-only,
// grep -l) into OS paths in first-seen order. CRLF endings, blank lines and
// repeats are dropped, and git's C-quoted names ("caf\303\251.ts") are
// unquoted.
func ParsePathList(output string) []string {
	paths := []string{}
	seen := make(map[string]struct{})

	for line := range strings.Lines(output) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 1 && line[0] == '"' && line[len(line)-1] == '"' {
			if unquoted, err := strconv.Unquote(line); err == nil {
				line = unquoted
			}
		}

		path := filepath.FromSlash(line)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	return paths
}
