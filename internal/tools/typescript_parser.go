package tools

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var ErrParse = errors.New("failed to parse TypeScript source")

// tagCleaner removes the quote and attribute-selector characters that wrap
// pipe names and directive selectors in decorator metadata.
var tagCleaner = strings.NewReplacer("'", "", "\"", "", "`", "", "[", "", "]", "")

type TypeScriptParser struct {
	parser *sitter.Parser
}

func NewTypeScriptParser() (*TypeScriptParser, error) {
	lang := sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	parser := sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language for parser: %w", err)
	}
	return &TypeScriptParser{parser: parser}, nil
}

func (tp *TypeScriptParser) Close() {
	tp.parser.Close()
}

// Parse builds a SourceUnit for one file. The caller must Close it.
func (tp *TypeScriptParser) Parse(filePath string, content []byte) (*SourceUnit, error) {
	tree := tp.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s: tree-sitter returned nil", ErrParse, filePath)
	}
	return &SourceUnit{Path: filePath, src: content, tree: tree}, nil
}

// SourceUnit is the syntax tree of a single file, kept only while its
// identifiers are extracted.
type SourceUnit struct {
	Path string
	src  []byte
	tree *sitter.Tree
}

func (u *SourceUnit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

// HasErrors reports whether tree-sitter had to recover from syntax errors.
func (u *SourceUnit) HasErrors() bool {
	return u.tree.RootNode().HasError()
}

// ClassName returns the name of the first class declared in the file.
func (u *SourceUnit) ClassName() string {
	node := firstNode(u.tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration", "abstract_class_declaration":
			return n.ChildByFieldName("name") != nil
		}
		return false
	})
	if node == nil {
		return ""
	}
	return node.ChildByFieldName("name").Utf8Text(u.src)
}

// InterfaceName returns the name of the first interface declared in the file.
func (u *SourceUnit) InterfaceName() string {
	node := firstNode(u.tree.RootNode(), func(n *sitter.Node) bool {
		return n.Kind() == "interface_declaration" && n.ChildByFieldName("name") != nil
	})
	if node == nil {
		return ""
	}
	return node.ChildByFieldName("name").Utf8Text(u.src)
}

// PipeName returns the value of the first `name` property, which for a pipe
// file is the name it is used by in templates.
func (u *SourceUnit) PipeName() string {
	return tagCleaner.Replace(u.propertyValue("name"))
}

// DirectiveSelector returns the first `selector` property value with quotes
// and attribute brackets removed.
func (u *SourceUnit) DirectiveSelector() string {
	return tagCleaner.Replace(u.propertyValue("selector"))
}

// ImportedNames returns the original (non-aliased) name of every import
// specifier, in document order.
func (u *SourceUnit) ImportedNames() []string {
	names := []string{}
	walk(u.tree.RootNode(), func(n *sitter.Node) bool {
		if n.Kind() != "import_specifier" {
			return false
		}
		if name := n.ChildByFieldName("name"); name != nil {
			names = append(names, name.Utf8Text(u.src))
		}
		return false
	})
	return names
}

func (u *SourceUnit) propertyValue(key string) string {
	node := firstNode(u.tree.RootNode(), func(n *sitter.Node) bool {
		if n.Kind() != "pair" {
			return false
		}
		k := n.ChildByFieldName("key")
		return k != nil && n.ChildByFieldName("value") != nil && tagCleaner.Replace(k.Utf8Text(u.src)) == key
	})
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.ChildByFieldName("value").Utf8Text(u.src))
}

// walk visits nodes depth first in document order until visit returns true.
func walk(root *sitter.Node, visit func(*sitter.Node) bool) {
	if root == nil {
		return
	}
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visit(n) {
			return
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

func firstNode(root *sitter.Node, match func(*sitter.Node) bool) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if match(n) {
			found = n
			return true
		}
		return false
	})
	return found
}
