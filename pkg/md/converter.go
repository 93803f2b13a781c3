// Package md renders Markdown with executable code blocks to HTML.
package md

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Converter renders Markdown documents to HTML. It holds no per-document
// state, so one Converter may serve any number of renders.
type Converter struct {
	md        goldmark.Markdown
	blocks    *CodeBlockRenderer
	sanitizer *bluemonday.Policy
}

type options struct {
	registry        Registry
	highlighter     Highlighter
	noHighlight     bool
	style           string
	logger          Logger
	executableClass string
	sanitize        bool
	gfm             bool
}

// Option configures a Converter.
type Option func(*options)

// WithRegistry sets the grammar registry and the highlighter that uses it.
// Without this option chroma's lexers are used.
func WithRegistry(reg Registry, hl Highlighter) Option {
	return func(o *options) {
		o.registry = reg
		o.highlighter = hl
	}
}

// WithoutHighlighting renders every code block as escaped plain text.
func WithoutHighlighting() Option {
	return func(o *options) {
		o.noHighlight = true
	}
}

// WithStyle sets the chroma style used by the default registry.
func WithStyle(style string) Option {
	return func(o *options) {
		o.style = style
	}
}

// WithLogger sets the sink for render diagnostics.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithExecutableClass sets the class of executable <pre> elements.
func WithExecutableClass(class string) Option {
	return func(o *options) {
		o.executableClass = class
	}
}

// WithSanitize runs the rendered HTML through a user-content policy.
func WithSanitize(enable bool) Option {
	return func(o *options) {
		o.sanitize = enable
	}
}

// WithGFM toggles GitHub Flavored Markdown (tables, strikethrough, task
// lists, autolinks). It is on by default.
func WithGFM(enable bool) Option {
	return func(o *options) {
		o.gfm = enable
	}
}

// New returns a Converter configured by opts.
func New(opts ...Option) *Converter {
	o := &options{gfm: true}
	for _, opt := range opts {
		opt(o)
	}

	blocks := &CodeBlockRenderer{
		Logger:          o.logger,
		ExecutableClass: o.executableClass,
	}
	switch {
	case o.noHighlight:
	case o.registry != nil:
		blocks.Registry = o.registry
		blocks.Highlighter = o.highlighter
	default:
		chroma := NewChromaRegistry(o.style)
		blocks.Registry = chroma
		blocks.Highlighter = chroma
	}

	exts := []goldmark.Extender{NewExecutableCode(blocks)}
	if o.gfm {
		exts = append(exts, extension.GFM)
	}

	c := &Converter{
		md:     goldmark.New(goldmark.WithExtensions(exts...)),
		blocks: blocks,
	}
	if o.sanitize {
		c.sanitizer = newSanitizer()
	}
	return c
}

// ToHTML renders a complete Markdown document. Every call produces the whole
// document; nothing carries over between calls.
func (c *Converter) ToHTML(markdown []byte) (string, error) {
	if len(markdown) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := c.md.Convert(markdown, &buf); err != nil {
		return "", err
	}

	if c.sanitizer != nil {
		return c.sanitizer.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

// newSanitizer allows user content plus the class attributes that carry
// language, highlighting and executable styling.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("pre", "code", "span")
	return p
}
