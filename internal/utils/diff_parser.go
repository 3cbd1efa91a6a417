package utils

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// ChangedFilesFromPatch returns the added and modified files of a unified
// diff, in patch order. Deletions, renames and copies are dropped, matching
// `git diff --diff-filter=AM`.
func ChangedFilesFromPatch(patch []byte) ([]string, error) {
	files := []string{}
	if len(strings.TrimSpace(string(patch))) == 0 {
		return files, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}

	seen := make(map[string]bool)
	for _, fd := range fileDiffs {
		if fd.NewName == "" || fd.NewName == devNull || isRenameOrCopy(fd.Extended) {
			continue
		}

		name := trimDiffPrefix(fd.NewName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}

	return files, nil
}

func trimDiffPrefix(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "b/") || strings.HasPrefix(name, "a/") {
		return name[2:]
	}
	return name
}

func isRenameOrCopy(extended []string) bool {
	for _, line := range extended {
		if strings.HasPrefix(line, "rename from ") || strings.HasPrefix(line, "copy from ") {
			return true
		}
	}
	return false
}
