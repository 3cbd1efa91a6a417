package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tayrichie/alfresco-ng2-components/internal/resolver"
	"github.com/tayrichie/alfresco-ng2-components/internal/tools"
	"github.com/tayrichie/alfresco-ng2-components/pkg/config"
	"github.com/tayrichie/alfresco-ng2-components/pkg/logging"
	"github.com/tayrichie/alfresco-ng2-components/pkg/spinner"
)

var version = "dev"

type options struct {
	changes    string
	configPath string
	patch      string
	noColor    bool
}

// flagKeys maps flags that override configuration to their config keys.
var flagKeys = map[string]string{
	"repo-root":   "repo_root",
	"source-root": "source_root",
	"e2e-root":    "e2e_root",
	"format":      "output.format",
	"search":      "search.tool",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"progress":    "output.progress",
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args, wantHelp := stripHelp(args)
	cmd := newRootCmd(stdin, stdout, stderr)
	if wantHelp {
		fmt.Fprint(stderr, cmd.UsageString())
	}

	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, tools.ErrMissingChanges) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// stripHelp removes -h and --help so that usage is printed and the command
// still runs.
func stripHelp(args []string) ([]string, bool) {
	kept := make([]string, 0, len(args))
	found := false
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			found = true
			continue
		}
		kept = append(kept, arg)
	}
	return kept, found
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "affected-e2e --changes <uncommitted|branch|REV>",
		Short: "List the e2e tests affected by a change set",
		Long: `Finds the e2e test files affected by added or modified files.

Changed services, pipes and directives are traced to the components that use
them, components are mapped to their page objects, and page objects to the e2e
tests that import them.

--changes selects the change set:
  uncommitted   working tree against the index
  branch        HEAD against its merge base with <git.remote>/<git.branch>
  REV           HEAD against the given revision`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts, stdin, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.changes, "changes", "a", "", "change set to analyse: uncommitted, branch or a revision")
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default .affected-e2e.yaml)")
	flags.StringVar(&opts.patch, "patch", "", "read changed files from a unified diff instead of git (- for stdin)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	flags.String("repo-root", config.DefaultRepoRoot, "repository root")
	flags.String("source-root", config.DefaultSourceRoot, "library source tree, relative to the repository root")
	flags.String("e2e-root", config.DefaultE2ERoot, "e2e test tree, relative to the repository root")
	flags.String("format", config.DefaultOutputFormat, "report format: "+strings.Join(resolver.SupportedFormats, ", "))
	flags.String("search", config.DefaultSearchTool, "template search tool: "+strings.Join(tools.SupportedSearchTools, ", "))
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", config.DefaultLogFormat, "log format: text, json")
	flags.Bool("progress", config.DefaultProgress, "show a progress spinner on stderr")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		msg := err.Error()
		if strings.Contains(msg, "flag needs an argument") &&
			(strings.Contains(msg, "--changes") || strings.Contains(msg, "'a'")) {
			return tools.ErrMissingChanges
		}
		return err
	})

	return cmd
}

func runResolve(cmd *cobra.Command, opts *options, stdin io.Reader, stdout, stderr io.Writer) error {
	// Checked before anything touches the filesystem.
	mode, err := tools.ParseChangeMode(opts.changes)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath, overrides(cmd, opts))
	if err != nil {
		return err
	}

	// Log records share stderr with the spinner, so they go through it.
	logOut := stderr
	var progress *spinner.Spinner
	if cfg.Output.Progress {
		progress = spinner.New(stderr, "Listing changed files...")
		logOut = progress
	}

	logger, err := logging.New(logOut, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	var source tools.ChangeSource
	if opts.patch != "" {
		source = &tools.PatchSource{Path: opts.patch, Stdin: stdin}
	} else {
		source = &tools.GitDiff{
			Dir:    cfg.RepoRoot,
			Remote: cfg.Git.Remote,
			Branch: cfg.Git.Branch,
			Mode:   mode,
			Logger: logger,
		}
	}

	if progress != nil {
		progress.Start()
		defer progress.Stop()
	}

	ctx := cmd.Context()
	changed, err := source.ChangedFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to get changed files: %w", err)
	}

	parser, err := tools.NewTypeScriptParser()
	if err != nil {
		return err
	}
	defer parser.Close()

	index, err := tools.NewSourceIndex(parser, cfg.Cache.Size)
	if err != nil {
		return err
	}

	searcher, err := tools.NewTextSearcher(cfg.Search.Tool, logger)
	if err != nil {
		return err
	}

	r := resolver.New(resolver.Options{
		RepoRoot:   cfg.RepoRoot,
		SourceRoot: cfg.SourceRoot,
		E2ERoot:    cfg.E2ERoot,
	}, index, searcher, logger)

	if progress != nil {
		progress.Update("Resolving affected e2e tests...")
	}
	result, err := r.Resolve(ctx, changed)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return fmt.Errorf("resolution interrupted: %w", err)
	}
	logger.Debug("source files indexed", "count", index.Len())

	useColor := cfg.Output.Color && !color.NoColor
	return resolver.NewReportRenderer(cfg.Output.Format, useColor).Render(stdout, result)
}

func overrides(cmd *cobra.Command, opts *options) map[string]any {
	values := map[string]any{}
	flags := cmd.Flags()
	for flag, key := range flagKeys {
		if !flags.Changed(flag) {
			continue
		}
		if flag == "progress" {
			values[key], _ = flags.GetBool(flag)
			continue
		}
		values[key], _ = flags.GetString(flag)
	}
	if opts.noColor {
		values["output.color"] = false
	}
	return values
}
