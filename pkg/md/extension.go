package md

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Priorities relative to goldmark's defaults: the fenced code parser runs at
// 700 and the HTML renderer at 1000.
const (
	priorityFenceParser       = 650
	priorityCodeBlockRenderer = 100
)

type executableCode struct {
	blocks *CodeBlockRenderer
}

// NewExecutableCode returns a goldmark extension that recognizes executable
// fenced code blocks and renders every code block through blocks.
func NewExecutableCode(blocks *CodeBlockRenderer) goldmark.Extender {
	if blocks == nil {
		blocks = &CodeBlockRenderer{}
	}
	return &executableCode{blocks: blocks}
}

func (e *executableCode) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(NewFenceParser(), priorityFenceParser),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeBlockNodeRenderer{blocks: e.blocks}, priorityCodeBlockRenderer),
	))
}
