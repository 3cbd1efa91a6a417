package resolver

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tayrichie/alfresco-ng2-components/internal/tools"
	"github.com/tayrichie/alfresco-ng2-components/internal/types"
	"github.com/tayrichie/alfresco-ng2-components/pkg/logging"
)

const (
	kindComponent = "component"
	kindService   = "service"
	kindE2E       = "e2e"
)

// SourceReader returns the identifiers extracted from a TypeScript file.
type SourceReader interface {
	Facts(path string) (*tools.SourceFacts, error)
}

// Options locate the trees the resolver searches. SourceRoot and E2ERoot are
// relative to RepoRoot unless absolute.
type Options struct {
	RepoRoot   string
	SourceRoot string
	E2ERoot    string
}

func (o Options) repoPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(o.RepoRoot, path)
}

// Resolver maps a change set to the e2e tests it affects.
type Resolver struct {
	opts     Options
	sources  SourceReader
	searcher tools.TextSearcher
	logger   *slog.Logger
}

func New(opts Options, sources SourceReader, searcher tools.TextSearcher, logger *slog.Logger) *Resolver {
	if opts.RepoRoot == "" {
		opts.RepoRoot = "."
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{
		opts:     opts,
		sources:  sources,
		searcher: searcher,
		logger:   logger,
	}
}

func (r *Resolver) sourceDir() string {
	return r.opts.repoPath(r.opts.SourceRoot)
}

func (r *Resolver) e2eDir() string {
	return r.opts.repoPath(r.opts.E2ERoot)
}

// Resolve runs the pipeline once over changed, in arrival order. Per-file
// failures are logged and recorded in Result.Skipped; the only error
// returned is ctx's.
func (r *Resolver) Resolve(ctx context.Context, changed []string) (*types.Result, error) {
	result := types.NewResult()

	for _, file := range ClassifyAll(changed) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.ChangedFiles = append(result.ChangedFiles, file)
		r.handle(ctx, file, result)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	r.collectPages(result)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	r.collectE2E(result)

	r.logger.Info("affected e2e", "count", len(result.AffectedE2E), "files", result.AffectedE2E)
	return result, nil
}

func (r *Resolver) handle(ctx context.Context, file types.ChangedFile, result *types.Result) {
	path := r.opts.repoPath(file.Path)
	if file.Role != types.RoleUnknown {
		r.logger.Info("analyzing", "path", file.Path, "role", file.Role.String())
	}

	switch file.Role {
	case types.RoleService:
		facts := r.facts(path, result)
		if facts == nil {
			return
		}
		if facts.ClassName == "" {
			r.skip(result, path, "no class declaration")
			return
		}
		r.logger.Info("service changed", "class", facts.ClassName)
		result.AffectedComponents = append(result.AffectedComponents,
			r.findByImport(kindComponent, r.sourceDir(), result, facts.ClassName)...)

	case types.RolePipe:
		facts := r.facts(path, result)
		if facts == nil {
			return
		}
		if facts.PipeName == "" {
			r.skip(result, path, "no pipe name")
			return
		}
		r.logger.Info("pipe changed", "name", facts.PipeName)
		result.AffectedComponents = append(result.AffectedComponents,
			r.findByTag(ctx, facts.PipeName)...)

	case types.RoleDirective:
		facts := r.facts(path, result)
		if facts == nil {
			return
		}
		if facts.DirectiveSelector == "" {
			r.skip(result, path, "no directive selector")
			return
		}
		r.logger.Info("directive changed", "selector", facts.DirectiveSelector)
		result.AffectedComponents = append(result.AffectedComponents,
			r.findByTag(ctx, facts.DirectiveSelector)...)

	case types.RolePage:
		facts := r.facts(path, result)
		if facts == nil {
			return
		}
		if facts.ClassName == "" {
			r.skip(result, path, "no class declaration")
			return
		}
		result.AffectedPages = append(result.AffectedPages, facts.ClassName)

	case types.RoleInterface:
		facts := r.facts(path, result)
		if facts == nil {
			return
		}
		r.logger.Info("interface changed", "name", facts.InterfaceName)

	case types.RoleModel:
		facts := r.facts(path, result)
		if facts == nil {
			return
		}
		if facts.ClassName == "" {
			r.skip(result, path, "no class declaration")
			return
		}
		services := r.findByImport(kindService, r.sourceDir(), result, facts.ClassName)
		result.AffectedServices = append(result.AffectedServices, services...)
		r.logger.Info("model changed", "class", facts.ClassName, "services", services)

	case types.RoleE2E:
		result.AddE2E(path)

	case types.RoleComponentTemplate:
		result.AffectedComponents = append(result.AffectedComponents, templateSource(path))

	case types.RoleComponentSource:
		result.AffectedComponents = append(result.AffectedComponents, path)

	default:
		r.logger.Debug("ignoring file", "path", file.Path)
	}
}

// collectPages derives a page name from every affected component, duplicates
// included.
func (r *Resolver) collectPages(result *types.Result) {
	for _, path := range result.AffectedComponents {
		facts := r.facts(path, result)
		if facts == nil {
			continue
		}
		if facts.ClassName == "" {
			r.skip(result, path, "no class declaration")
			continue
		}
		page := PageName(facts.ClassName)
		r.logger.Debug("component maps to page", "component", facts.ClassName, "page", page)
		result.AffectedPages = append(result.AffectedPages, page)
	}
}

func (r *Resolver) collectE2E(result *types.Result) {
	for _, page := range result.AffectedPages {
		result.AddE2E(r.findByImport(kindE2E, r.e2eDir(), result, page)...)
	}
}

// findByImport returns the `.<kind>.ts` files under root that import any of
// symbols.
func (r *Resolver) findByImport(kind, root string, result *types.Result, symbols ...string) []string {
	candidates, err := tools.ListFiles(root, "."+kind+".ts")
	if err != nil {
		r.logger.Error("cannot list files", "kind", kind, "root", root, "error", err)
		result.Skip(root, err.Error())
		return nil
	}

	matches := []string{}
	for _, path := range candidates {
		facts := r.facts(path, result)
		if facts == nil {
			continue
		}
		if facts.ImportsAny(symbols...) {
			matches = append(matches, path)
		}
	}
	r.logger.Debug("import search", "kind", kind, "symbols", symbols, "matches", len(matches))
	return matches
}

// findByTag returns the component sources whose template mentions tag.
func (r *Resolver) findByTag(ctx context.Context, tag string) []string {
	templates, err := r.searcher.Search(ctx, tag, r.sourceDir(), "html")
	if err != nil {
		r.logger.Warn("nothing found with tag", "tag", tag, "error", err)
		return nil
	}
	if len(templates) == 0 {
		r.logger.Info("nothing found with tag", "tag", tag)
		return nil
	}

	sources := make([]string, 0, len(templates))
	for _, path := range templates {
		sources = append(sources, templateSource(path))
	}
	return sources
}

func (r *Resolver) facts(path string, result *types.Result) *tools.SourceFacts {
	facts, err := r.sources.Facts(path)
	if err != nil {
		r.logger.Error("skipping file", "path", path, "error", err)
		result.Skip(path, err.Error())
		return nil
	}
	if facts.HasErrors {
		r.logger.Debug("file has syntax errors", "path", path)
	}
	return facts
}

func (r *Resolver) skip(result *types.Result, path, reason string) {
	r.logger.Warn("skipped", "path", path, "reason", reason)
	result.Skip(path, reason)
}

func templateSource(path string) string {
	return strings.TrimSuffix(path, ".html") + ".ts"
}
