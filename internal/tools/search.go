package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tayrichie/alfresco-ng2-components/internal/utils"
	"github.com/tayrichie/alfresco-ng2-components/pkg/logging"
)

// TextSearcher finds files under root with extension ext (without the dot)
// whose content contains pattern literally.
type TextSearcher interface {
	Search(ctx context.Context, pattern, root, ext string) ([]string, error)
}

const (
	SearchToolGrep    = "grep"
	SearchToolBuiltin = "builtin"
)

var SupportedSearchTools = []string{SearchToolBuiltin, SearchToolGrep}

// NewTextSearcher returns the searcher registered under name.
func NewTextSearcher(name string, logger *slog.Logger) (TextSearcher, error) {
	switch name {
	case SearchToolGrep:
		return &GrepSearcher{}, nil
	case SearchToolBuiltin, "":
		return &WalkSearcher{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown search tool %q", name)
	}
}

// GrepSearcher shells out to grep.
type GrepSearcher struct{}

func (s *GrepSearcher) Search(ctx context.Context, pattern, root, ext string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "grep", "-lrF", "--include=*."+ext, "--", pattern, root)
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) && exitError.ExitCode() == 1 {
			return []string{}, nil
		}
		return nil, fmt.Errorf("grep for %q failed: %w", pattern, err)
	}

	return utils.ParsePathList(string(output)), nil
}

// WalkSearcher scans files line by line in process. Files that cannot be
// read are logged and skipped.
type WalkSearcher struct {
	Logger *slog.Logger
}

func (s *WalkSearcher) Search(ctx context.Context, pattern, root, ext string) ([]string, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	candidates, err := ListFiles(root, "."+ext)
	if err != nil {
		return nil, err
	}

	matches := []string{}
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := fileContains(path, pattern)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		if found {
			matches = append(matches, path)
		}
	}

	return matches, nil
}

func fileContains(path, pattern string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), pattern) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// ListFiles returns every regular file under root whose name ends with
// suffix, in lexical walk order. The whole subtree is walked, matching what
// grep -r sees. Unreadable subdirectories are skipped; an unreadable root is
// an error.
func ListFiles(root, suffix string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files under %s: %w", suffix, root, err)
	}
	return files, nil
}
