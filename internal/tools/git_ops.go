package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/tayrichie/alfresco-ng2-components/internal/utils"
	"github.com/tayrichie/alfresco-ng2-components/pkg/logging"
)

var ErrMissingChanges = errors.New("changes mode is required")

// ChangeSource lists the added or modified files of a change set.
type ChangeSource interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}

type ChangeKind int

const (
	// ChangesUncommitted compares the working tree against the index.
	ChangesUncommitted ChangeKind = iota
	// ChangesBranch compares HEAD against its merge base with the remote branch.
	ChangesBranch
	// ChangesRevision compares HEAD against an explicit revision.
	ChangesRevision
)

type ChangeMode struct {
	Kind     ChangeKind
	Revision string
}

// ParseChangeMode interprets the value of --changes.
func ParseChangeMode(value string) (ChangeMode, error) {
	value = strings.TrimSpace(value)
	switch value {
	case "":
		return ChangeMode{}, ErrMissingChanges
	case "uncommitted":
		return ChangeMode{Kind: ChangesUncommitted}, nil
	case "branch":
		return ChangeMode{Kind: ChangesBranch}, nil
	default:
		return ChangeMode{Kind: ChangesRevision, Revision: value}, nil
	}
}

func (m ChangeMode) String() string {
	switch m.Kind {
	case ChangesUncommitted:
		return "uncommitted"
	case ChangesBranch:
		return "branch"
	default:
		return m.Revision
	}
}

// GitDiff reads the change set from `git diff --name-only --diff-filter=AM`.
// Paths are relative to Dir, and changes outside Dir are left out, so Dir
// may be a subdirectory of the work tree.
type GitDiff struct {
	Dir    string
	Remote string
	Branch string
	Mode   ChangeMode
	Logger *slog.Logger
}

func (g *GitDiff) ChangedFiles(ctx context.Context) ([]string, error) {
	base, head, err := g.Revisions(ctx)
	if err != nil {
		return nil, err
	}

	g.logger().Info("listing changed files", "mode", g.Mode.String(), "base", base, "head", head)

	args := []string{"diff", "--relative", "--name-only", "--diff-filter=AM"}
	if base != "" {
		args = append(args, base, head)
	}

	output, err := g.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}

	files := utils.ParsePathList(output)
	g.logger().Info("files changed", "count", len(files), "files", files)
	return files, nil
}

// Revisions resolves the mode to the pair of revisions handed to git diff.
// Both are empty for uncommitted changes.
func (g *GitDiff) Revisions(ctx context.Context) (base, head string, err error) {
	switch g.Mode.Kind {
	case ChangesUncommitted:
		return "", "", nil
	case ChangesBranch:
		base, err = g.MergeBase(ctx)
		if err != nil {
			return "", "", err
		}
		return base, "HEAD", nil
	default:
		return g.Mode.Revision, "HEAD", nil
	}
}

// MergeBase returns the commit where HEAD forked from Remote/Branch.
func (g *GitDiff) MergeBase(ctx context.Context) (string, error) {
	ref := g.Remote + "/" + g.Branch
	g.logger().Info("resolving merge base", "ref", ref)

	output, err := g.run(ctx, "merge-base", ref, "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get merge base of %s: %w", ref, err)
	}

	sha := strings.TrimSpace(output)
	if sha == "" {
		return "", fmt.Errorf("merge base of %s is empty", ref)
	}
	return sha, nil
}

func (g *GitDiff) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(output), nil
}

func (g *GitDiff) logger() *slog.Logger {
	if g.Logger == nil {
		return logging.Discard()
	}
	return g.Logger
}

// PatchSource reads the change set from a unified diff file, or from Stdin
// when Path is "-".
type PatchSource struct {
	Path  string
	Stdin io.Reader
}

func (p *PatchSource) ChangedFiles(ctx context.Context) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if p.Path == "-" {
		in := p.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(p.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read patch %s: %w", p.Path, err)
	}

	return utils.ChangedFilesFromPatch(data)
}
