package resolver

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayrichie/alfresco-ng2-components/internal/types"
)

func sampleResult() *types.Result {
	result := types.NewResult()
	result.ChangedFiles = []types.ChangedFile{
		{Path: "lib/core/pipes/highlight.pipe.ts", Role: types.RolePipe},
		{Path: "README.md", Role: types.RoleUnknown},
	}
	result.AffectedComponents = []string{"lib/core/bar/bar.component.ts"}
	result.AffectedPages = []string{"BarPage"}
	result.AddE2E("e2e/bar.e2e.ts", "e2e/both.e2e.ts")
	result.Skip("lib/core/gone.service.ts", "file cannot be read")
	return result
}

func TestReportRenderer_List(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReportRenderer(FormatList, false).Render(&out, sampleResult()))

	assert.Equal(t, "e2e/bar.e2e.ts\ne2e/both.e2e.ts\n", out.String())
}

func TestReportRenderer_ListEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReportRenderer(FormatList, false).Render(&out, types.NewResult()))

	assert.Empty(t, out.String())
}

func TestReportRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReportRenderer(FormatJSON, false).Render(&out, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, []any{"e2e/bar.e2e.ts", "e2e/both.e2e.ts"}, decoded["affected_e2e"])
	assert.Equal(t, []any{"BarPage"}, decoded["affected_pages"])
	assert.NotContains(t, decoded, "affected_services")
}

func TestReportRenderer_Human(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReportRenderer(FormatHuman, false).Render(&out, sampleResult()))

	text := out.String()
	assert.Contains(t, text, "   ✓ lib/core/pipes/highlight.pipe.ts (pipe)")
	assert.Contains(t, text, "   - README.md")
	assert.Contains(t, text, "Affected pages:\n   BarPage")
	assert.Contains(t, text, "   ✓ e2e/both.e2e.ts")
	assert.Contains(t, text, "   ✕ lib/core/gone.service.ts: file cannot be read")
	assert.NotContains(t, text, "\x1b[", "colour codes written with colour disabled")
	assert.NotContains(t, text, "Affected services:")
}

func TestReportRenderer_HumanNoResults(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReportRenderer(FormatHuman, false).Render(&out, types.NewResult()))

	assert.Contains(t, out.String(), "no added or modified files found")
	assert.Contains(t, out.String(), "no affected e2e tests found")
}

func TestReportRenderer_HumanColor(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReportRenderer(FormatHuman, true).Render(&out, sampleResult()))

	assert.Contains(t, out.String(), "\x1b[")
}

func TestReportRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReportRenderer(FormatTable, false).Render(&out, sampleResult()))

	text := out.String()
	for _, want := range []string{"lib/core/bar/bar.component.ts", "BarPage", "e2e/bar.e2e.ts", "e2e/both.e2e.ts"} {
		assert.Contains(t, text, want)
	}
	assert.True(t, strings.Contains(text, "┌"), "light table style")
}

func TestReportRenderer_UnknownFormat(t *testing.T) {
	err := NewReportRenderer("yaml", false).Render(&bytes.Buffer{}, sampleResult())
	assert.Error(t, err)
}
