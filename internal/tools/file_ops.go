package tools

import (
	"errors"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrUnreadable = errors.New("file cannot be read")

const DefaultCacheSize = 2048

// SourceFacts holds every identifier the resolver needs from one file, so a
// file is read and parsed at most once per cache lifetime.
type SourceFacts struct {
	Path              string
	ClassName         string
	InterfaceName     string
	PipeName          string
	DirectiveSelector string
	Imports           []string
	HasErrors         bool
}

// ImportsAny reports whether the file imports any of the given names.
func (f *SourceFacts) ImportsAny(names ...string) bool {
	for _, imported := range f.Imports {
		for _, name := range names {
			if imported == name {
				return true
			}
		}
	}
	return false
}

// SourceIndex reads and parses TypeScript files on demand and keeps the
// extracted facts in an LRU cache keyed by path.
type SourceIndex struct {
	parser   *TypeScriptParser
	cache    *lru.Cache[string, *SourceFacts]
	readFile func(string) ([]byte, error)
}

func NewSourceIndex(parser *TypeScriptParser, cacheSize int) (*SourceIndex, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *SourceFacts](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}
	return &SourceIndex{
		parser:   parser,
		cache:    cache,
		readFile: os.ReadFile,
	}, nil
}

// Facts returns the identifiers of the file at path. Read and parse failures
// are returned wrapped in ErrUnreadable or ErrParse and are not cached.
func (si *SourceIndex) Facts(path string) (*SourceFacts, error) {
	if facts, ok := si.cache.Get(path); ok {
		return facts, nil
	}

	content, err := si.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	unit, err := si.parser.Parse(path, content)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	facts := &SourceFacts{
		Path:              path,
		ClassName:         unit.ClassName(),
		InterfaceName:     unit.InterfaceName(),
		PipeName:          unit.PipeName(),
		DirectiveSelector: unit.DirectiveSelector(),
		Imports:           unit.ImportedNames(),
		HasErrors:         unit.HasErrors(),
	}
	si.cache.Add(path, facts)

	return facts, nil
}

func (si *SourceIndex) Len() int {
	return si.cache.Len()
}
