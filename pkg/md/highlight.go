package md

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// Grammar is a highlighter-specific tokenization ruleset for one language.
type Grammar any

// Registry looks up grammars by the exact language tag of a code block.
type Registry interface {
	Lookup(tag string) (Grammar, bool)
}

// Highlighter turns code into HTML markup using a grammar obtained from a
// Registry. The returned markup must already be HTML-escaped.
type Highlighter interface {
	Highlight(text string, g Grammar, tag string) (string, error)
}

// MapRegistry is a Registry backed by a plain map.
type MapRegistry map[string]Grammar

// Lookup implements Registry.
func (m MapRegistry) Lookup(tag string) (Grammar, bool) {
	g, ok := m[tag]
	return g, ok
}

// ChromaRegistry is a read-only Registry and Highlighter over chroma's lexers.
// Tags resolve only against lexer aliases and lowercased lexer names; there is
// no filename or content based guessing.
type ChromaRegistry struct {
	lexers    map[string]chroma.Lexer
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewChromaRegistry indexes chroma's global lexer registry. An unknown style
// name falls back to chroma's default style.
func NewChromaRegistry(style string) *ChromaRegistry {
	if style == "" {
		style = DefaultStyle
	}

	index := make(map[string]chroma.Lexer)
	for _, l := range lexers.GlobalLexerRegistry.Lexers {
		cfg := l.Config()
		for _, alias := range cfg.Aliases {
			if _, dup := index[alias]; !dup {
				index[alias] = l
			}
		}
		name := strings.ToLower(cfg.Name)
		if _, dup := index[name]; !dup {
			index[name] = l
		}
	}

	return &ChromaRegistry{
		lexers: index,
		style:  styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// Lookup implements Registry.
func (r *ChromaRegistry) Lookup(tag string) (Grammar, bool) {
	l, ok := r.lexers[tag]
	if !ok {
		return nil, false
	}
	return l, true
}

// Highlight implements Highlighter.
func (r *ChromaRegistry) Highlight(text string, g Grammar, tag string) (string, error) {
	lexer, ok := g.(chroma.Lexer)
	if !ok {
		return "", fmt.Errorf("grammar for %q is %T, not a chroma lexer", tag, g)
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise %s code: %w", tag, err)
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return "", fmt.Errorf("failed to format %s code: %w", tag, err)
	}
	return buf.String(), nil
}

// CSS returns the style sheet for the class names emitted by Highlight.
func (r *ChromaRegistry) CSS() (string, error) {
	var buf bytes.Buffer
	if err := r.formatter.WriteCSS(&buf, r.style); err != nil {
		return "", err
	}
	return buf.String(), nil
}
