package md

import (
	"io"
	"log"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DefaultExecutableClass is the class put on the <pre> of executable blocks.
const DefaultExecutableClass = "executable"

// Logger receives non-fatal diagnostics such as unknown languages.
type Logger interface {
	Printf(format string, v ...any)
}

var discardLogger Logger = log.New(io.Discard, "", 0)

// CodeBlockRenderer turns the text of a code block into an HTML fragment.
// A nil Registry disables highlighting.
type CodeBlockRenderer struct {
	Registry        Registry
	Highlighter     Highlighter
	Logger          Logger
	ExecutableClass string
}

// Render returns one of three fragments:
//
//	<pre class="executable"><code>...</code></pre>   executable blocks
//	<pre><code class="TAG">...</code></pre>          blocks with a language
//	<pre><code>...</code></pre>                      everything else
//
// escaped reports whether code is already HTML-safe. Errors come only from
// the highlighter.
func (r *CodeBlockRenderer) Render(code string, lang CodeLanguage, escaped bool) (string, error) {
	tag := lang.Tag
	if lang.Executable {
		tag = ""
	}

	if tag != "" {
		out, ok, err := r.highlight(code, tag)
		if err != nil {
			return "", err
		}
		if ok && out != code {
			code = out
			escaped = true
		}
	}

	code = strings.TrimSuffix(code, "\n") + "\n"
	if !escaped {
		code = escapeHTML(code)
	}

	var sb strings.Builder
	switch {
	case lang.Executable:
		sb.WriteString(`<pre class="`)
		sb.WriteString(escapeHTML(r.executableClass()))
		sb.WriteString(`"><code>`)
	case tag != "":
		sb.WriteString(`<pre><code class="`)
		sb.WriteString(escapeHTML(tag))
		sb.WriteString(`">`)
	default:
		sb.WriteString(`<pre><code>`)
	}
	sb.WriteString(code)
	sb.WriteString("</code></pre>\n")

	return sb.String(), nil
}

// highlight reports ok=false when no grammar is registered for tag.
func (r *CodeBlockRenderer) highlight(code, tag string) (string, bool, error) {
	if r.Registry == nil || r.Highlighter == nil {
		return "", false, nil
	}

	grammar, ok := r.Registry.Lookup(tag)
	if !ok {
		r.logger().Printf("no grammar registered for language %q, rendering as plain text", tag)
		return "", false, nil
	}

	out, err := r.Highlighter.Highlight(code, grammar, tag)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

func (r *CodeBlockRenderer) logger() Logger {
	if r.Logger == nil {
		return discardLogger
	}
	return r.Logger
}

func (r *CodeBlockRenderer) executableClass() string {
	if r.ExecutableClass == "" {
		return DefaultExecutableClass
	}
	return r.ExecutableClass
}

// escapeHTML escapes the five HTML-significant characters. The ampersand goes
// first so the entities introduced afterwards are left alone.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}

// codeBlockNodeRenderer plugs CodeBlockRenderer into goldmark for fenced,
// indented and executable code blocks.
type codeBlockNodeRenderer struct {
	blocks *CodeBlockRenderer
}

func (r *codeBlockNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(KindExecutableCodeBlock, r.renderExecutableCodeBlock)
}

func (r *codeBlockNodeRenderer) renderFencedCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := Ordinary(string(n.Language(source)))
	return r.write(w, linesText(n, source), lang)
}

func (r *codeBlockNodeRenderer) renderCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	return r.write(w, linesText(node, source), Ordinary(""))
}

func (r *codeBlockNodeRenderer) renderExecutableCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ExecutableCodeBlock)
	lang := Executable(string(n.Language(source)))
	return r.write(w, linesText(n, source), lang)
}

func (r *codeBlockNodeRenderer) write(w util.BufWriter, code string, lang CodeLanguage) (ast.WalkStatus, error) {
	out, err := r.blocks.Render(code, lang, false)
	if err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString(out)
	return ast.WalkContinue, nil
}

// linesText concatenates the raw lines of a block node.
func linesText(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(source))
	}
	return sb.String()
}
