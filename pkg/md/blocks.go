package md

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Block is an executable code block found in a document.
type Block struct {
	Index    int    `json:"index"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
	Line     int    `json:"line"` // 1-based line of the opening fence
}

var blockParser = goldmark.New(goldmark.WithExtensions(NewExecutableCode(nil))).Parser()

// ExecutableBlocks returns the executable code blocks of a document in
// document order. Indexes match the order in which a rendered page numbers
// its executable blocks.
func ExecutableBlocks(source []byte) ([]Block, error) {
	root := blockParser.Parse(text.NewReader(source))

	var blocks []Block
	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != KindExecutableCodeBlock {
			return ast.WalkContinue, nil
		}
		n := node.(*ExecutableCodeBlock)

		blocks = append(blocks, Block{
			Index:    len(blocks),
			Language: string(n.Language(source)),
			Code:     linesText(n, source),
			Line:     openingLine(n, source),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

func openingLine(n *ExecutableCodeBlock, source []byte) int {
	if n.Info != nil {
		return lineAt(source, n.Info.Segment.Start)
	}
	if lines := n.Lines(); lines.Len() > 0 {
		return lineAt(source, lines.At(0).Start) - 1
	}
	return 0
}

func lineAt(source []byte, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
