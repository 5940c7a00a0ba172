// Package treesitter implements pkg/lang.Tokenizer on top of
// github.com/smacker/go-tree-sitter, the production tokenizer for Java,
// Python, and C sources.
package treesitter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/cutwater-labs/mossaic/pkg/lang"
	"github.com/cutwater-labs/mossaic/pkg/span"
)

// commentNodeTypes lists the tree-sitter node types treated as comments per
// language, dropped when Options.IncludeComments is false.
var commentNodeTypes = map[lang.Name]map[string]bool{
	lang.Java:   {"line_comment": true, "block_comment": true, "comment": true},
	lang.Python: {"comment": true},
	lang.C:      {"comment": true},
}

// Tokenizer is the tree-sitter backed lang.Tokenizer for one language.
type Tokenizer struct {
	language lang.Name
	grammar  *sitter.Language
}

// NewJava returns a Tokenizer for Java source.
func NewJava() *Tokenizer { return &Tokenizer{language: lang.Java, grammar: java.GetLanguage()} }

// NewPython returns a Tokenizer for Python source.
func NewPython() *Tokenizer {
	return &Tokenizer{language: lang.Python, grammar: python.GetLanguage()}
}

// NewC returns a Tokenizer for C source.
func NewC() *Tokenizer { return &Tokenizer{language: lang.C, grammar: c.GetLanguage()} }

// Register adds Java, Python, and C tree-sitter tokenizers to r under their
// conventional extensions.
func Register(r *lang.Registry) {
	r.Register(&lang.Language{Name: lang.Java, Extensions: []string{".java"}, Tokenizer: NewJava()})
	r.Register(&lang.Language{Name: lang.Python, Extensions: []string{".py", ".pyw"}, Tokenizer: NewPython()})
	r.Register(&lang.Language{Name: lang.C, Extensions: []string{".c", ".h"}, Tokenizer: NewC()})
}

// Tokenize parses content and emits one token per named CST node visited in
// pre-order DFS, using the tree-sitter grammar's node-type vocabulary as the
// token string. Comment nodes are dropped unless opts.IncludeComments.
func (t *Tokenizer) Tokenize(path string, content string, opts lang.Options) (*lang.TokenizedFile, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(t.grammar)

	source := []byte(content)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &lang.TokenizationError{Path: path, Err: err}
	}
	if tree == nil {
		return nil, &lang.TokenizationError{Path: path, Err: fmt.Errorf("parser produced no tree")}
	}
	root := tree.RootNode()
	if root == nil {
		return nil, &lang.TokenizationError{Path: path, Err: fmt.Errorf("empty parse tree")}
	}
	if root.HasError() {
		return nil, &lang.TokenizationError{Path: path, Err: fmt.Errorf("grammar reported a syntax error")}
	}

	ignoreComments := commentNodeTypes[t.language]
	out := &lang.TokenizedFile{}
	walk(root, func(n *sitter.Node) {
		if !n.IsNamed() {
			return
		}
		nodeType := n.Type()
		if !opts.IncludeComments && ignoreComments[nodeType] {
			return
		}
		start, end := n.StartPoint(), n.EndPoint()
		out.Tokens = append(out.Tokens, nodeType)
		out.Mapping = append(out.Mapping, span.NewRegion(
			int(start.Row), int(start.Column), int(end.Row), int(end.Column),
		))
	})
	return out, nil
}

// walk performs a pre-order depth-first traversal, visiting every child
// (named or not — callers filter) in order.
func walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}
