package md

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ExecuteMarker is the literal that turns a fenced code block into an
// executable one when it directly follows the closing fence.
const ExecuteMarker = "{{execute}}"

// reFence matches a complete fenced block at the start of the input. The
// closing fence must be followed by a newline, optionally preceded by the
// execute marker.
var reFence = regexp.MustCompile("^```(\\w+)?\\n([\\s\\S]*?)\\n```(\\{\\{execute\\}\\})?\\n")

// FenceMatch is a fenced block recognized by ClassifyFence.
type FenceMatch struct {
	Language   string // empty when the fence has no language tag
	Code       []byte // inner text, without the newline before the closing fence
	Executable bool
	Raw        []byte // the consumed input, marker and trailing newline included
}

// ClassifyFence matches a fenced code block at the start of src. It reports
// ok only for executable blocks; everything else, including well-formed
// fences without the marker, is left to the default fenced code parser.
func ClassifyFence(src []byte) (FenceMatch, bool) {
	m := reFence.FindSubmatch(src)
	if m == nil || len(m[3]) == 0 {
		return FenceMatch{}, false
	}
	return FenceMatch{
		Language:   string(m[1]),
		Code:       m[2],
		Executable: true,
		Raw:        m[0],
	}, true
}

// KindExecutableCodeBlock is the node kind of ExecutableCodeBlock.
var KindExecutableCodeBlock = ast.NewNodeKind("ExecutableCodeBlock")

// ExecutableCodeBlock is a fenced code block closed with the execute marker.
type ExecutableCodeBlock struct {
	ast.BaseBlock

	// Info holds the language tag written after the opening fence, or nil.
	Info *ast.Text

	// code lines still to be consumed before the closing fence
	remaining int
}

// NewExecutableCodeBlock returns an empty ExecutableCodeBlock.
func NewExecutableCodeBlock(info *ast.Text) *ExecutableCodeBlock {
	return &ExecutableCodeBlock{Info: info}
}

// Kind implements ast.Node.
func (n *ExecutableCodeBlock) Kind() ast.NodeKind {
	return KindExecutableCodeBlock
}

// IsRaw implements ast.Node.
func (n *ExecutableCodeBlock) IsRaw() bool {
	return true
}

// Language returns the tag written after the opening fence.
func (n *ExecutableCodeBlock) Language(source []byte) []byte {
	if n.Info == nil {
		return nil
	}
	return n.Info.Segment.Value(source)
}

// Dump implements ast.Node.
func (n *ExecutableCodeBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Language": string(n.Language(source)),
	}, nil)
}

// fenceParser recognizes executable fences before goldmark's own fenced code
// parser gets to see them.
type fenceParser struct{}

// NewFenceParser returns a block parser for executable fenced code blocks.
func NewFenceParser() parser.BlockParser {
	return &fenceParser{}
}

func (p *fenceParser) Trigger() []byte {
	return []byte{'`'}
}

func (p *fenceParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	// The match runs on raw source, so container prefixes (quotes, list
	// indentation) would end up in the code. Only top-level fences qualify.
	if parent.Kind() != ast.KindDocument || pc.BlockOffset() != 0 {
		return nil, parser.NoChildren
	}

	_, segment := reader.PeekLine()
	if segment.Padding != 0 {
		return nil, parser.NoChildren
	}

	m, ok := ClassifyFence(reader.Source()[segment.Start:])
	if !ok {
		return nil, parser.NoChildren
	}

	var info *ast.Text
	if m.Language != "" {
		start := segment.Start + 3
		info = ast.NewTextSegment(text.NewSegment(start, start+len(m.Language)))
	}

	node := NewExecutableCodeBlock(info)
	node.remaining = bytes.Count(m.Code, []byte{'\n'}) + 1

	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *fenceParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*ExecutableCodeBlock)
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}

	if n.remaining == 0 {
		// closing fence with the marker
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(segment.Len() - newline)
		return parser.Close
	}

	n.Lines().Append(segment)
	n.remaining--
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *fenceParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *fenceParser) CanInterruptParagraph() bool {
	return true
}

func (p *fenceParser) CanAcceptIndentedLine() bool {
	return false
}
