package resolver

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tayrichie/alfresco-ng2-components/internal/types"
)

const (
	FormatHuman = "human"
	FormatList  = "list"
	FormatJSON  = "json"
	FormatTable = "table"
)

var SupportedFormats = []string{FormatHuman, FormatList, FormatJSON, FormatTable}

// ReportRenderer writes a Result in one of the supported formats.
type ReportRenderer struct {
	format   string
	useColor bool
}

func NewReportRenderer(format string, useColor bool) *ReportRenderer {
	return &ReportRenderer{
		format:   format,
		useColor: useColor,
	}
}

func (rr *ReportRenderer) Render(w io.Writer, result *types.Result) error {
	switch rr.format {
	case FormatHuman, "":
		return rr.renderHuman(w, result)
	case FormatList:
		return renderList(w, result)
	case FormatJSON:
		return renderJSON(w, result)
	case FormatTable:
		return renderTable(w, result)
	default:
		return fmt.Errorf("unsupported report format %q", rr.format)
	}
}

func (rr *ReportRenderer) colored(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if rr.useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (rr *ReportRenderer) renderHuman(w io.Writer, result *types.Result) error {
	ok := rr.colored(color.FgGreen)
	bad := rr.colored(color.FgRed)
	dim := rr.colored(color.FgHiBlack)
	heading := rr.colored(color.Bold)

	heading.Fprint(w, "Changed files:")
	if len(result.ChangedFiles) == 0 {
		bad.Fprint(w, "\n   ✕ no added or modified files found")
	}
	for _, file := range result.ChangedFiles {
		if file.Role == types.RoleUnknown {
			dim.Fprintf(w, "\n   - %s", file.Path)
			continue
		}
		ok.Fprintf(w, "\n   ✓ %s", file.Path)
		dim.Fprintf(w, " (%s)", file.Role)
	}
	fmt.Fprintln(w)

	sections := []struct {
		title string
		items []string
	}{
		{"Affected components:", result.AffectedComponents},
		{"Affected services:", result.AffectedServices},
		{"Affected pages:", result.AffectedPages},
	}
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		heading.Fprint(w, "\n"+section.title)
		for _, item := range section.items {
			fmt.Fprintf(w, "\n   %s", item)
		}
		fmt.Fprintln(w)
	}

	heading.Fprint(w, "\nAffected e2e tests:")
	if len(result.AffectedE2E) == 0 {
		bad.Fprint(w, "\n   ✕ no affected e2e tests found")
	}
	for _, path := range result.AffectedE2E {
		ok.Fprintf(w, "\n   ✓ %s", path)
	}
	fmt.Fprintln(w)

	if len(result.Skipped) > 0 {
		heading.Fprint(w, "\nSkipped:")
		for _, skip := range result.Skipped {
			bad.Fprintf(w, "\n   ✕ %s: %s", skip.Path, skip.Reason)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// renderList prints one e2e path per line so the output can be piped to a
// test runner.
func renderList(w io.Writer, result *types.Result) error {
	for _, path := range result.AffectedE2E {
		if _, err := fmt.Fprintln(w, path); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, result *types.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

func renderTable(w io.Writer, result *types.Result) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Stage", "Item"})

	for _, file := range result.ChangedFiles {
		tw.AppendRow(table.Row{"changed (" + file.Role.String() + ")", file.Path})
	}
	for _, path := range result.AffectedComponents {
		tw.AppendRow(table.Row{"component", path})
	}
	for _, path := range result.AffectedServices {
		tw.AppendRow(table.Row{"service", path})
	}
	for _, page := range result.AffectedPages {
		tw.AppendRow(table.Row{"page", page})
	}
	for _, path := range result.AffectedE2E {
		tw.AppendRow(table.Row{"e2e", path})
	}
	for _, skip := range result.Skipped {
		tw.AppendRow(table.Row{"skipped", skip.Path + ": " + skip.Reason})
	}

	tw.AppendFooter(table.Row{"e2e tests", len(result.AffectedE2E)})
	tw.Render()
	return nil
}
