package tools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, size int) *SourceIndex {
	t.Helper()
	parser, err := NewTypeScriptParser()
	require.NoError(t, err)
	t.Cleanup(parser.Close)

	index, err := NewSourceIndex(parser, size)
	require.NoError(t, err)
	return index
}

func TestSourceIndex_Facts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "highlight.pipe.ts")
	require.NoError(t, os.WriteFile(path, []byte(`import { Pipe, PipeTransform } from '@angular/core';

@Pipe({ name: 'highlight' })
export class HighlightPipe implements PipeTransform {
    transform(value: string): string { return value; }
}
`), 0644))

	index := newTestIndex(t, 8)

	facts, err := index.Facts(path)
	require.NoError(t, err)

	assert.Equal(t, path, facts.Path)
	assert.Equal(t, "HighlightPipe", facts.ClassName)
	assert.Equal(t, "highlight", facts.PipeName)
	assert.Equal(t, []string{"Pipe", "PipeTransform"}, facts.Imports)
	assert.False(t, facts.HasErrors)
	assert.True(t, facts.ImportsAny("Nope", "PipeTransform"))
	assert.False(t, facts.ImportsAny("HighlightPipe"))
}

func TestSourceIndex_CachesParsedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.service.ts")
	require.NoError(t, os.WriteFile(path, []byte(`export class WidgetService {}`), 0644))

	index := newTestIndex(t, 8)
	reads := 0
	index.readFile = func(p string) ([]byte, error) {
		reads++
		return os.ReadFile(p)
	}

	first, err := index.Facts(path)
	require.NoError(t, err)
	second, err := index.Facts(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, reads)
	assert.Equal(t, 1, index.Len())
}

func TestSourceIndex_MissingFile(t *testing.T) {
	index := newTestIndex(t, 8)

	_, err := index.Facts(filepath.Join(t.TempDir(), "missing.service.ts"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreadable))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 0, index.Len())
}

func TestNewSourceIndex_DefaultsCacheSize(t *testing.T) {
	index := newTestIndex(t, 0)
	assert.NotNil(t, index.cache)
}
