package md

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHighlighter wraps code in <b> after escaping it.
type fakeHighlighter struct {
	calls    int
	err      error
	identity bool
}

func (f *fakeHighlighter) Highlight(text string, g Grammar, tag string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.identity {
		return text, nil
	}
	return "<b>" + escapeHTML(strings.TrimSuffix(text, "\n")) + "</b>\n", nil
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.messages = append(l.messages, fmt.Sprintf(format, v...))
}

func newTestRenderer(hl *fakeHighlighter, logger Logger) *CodeBlockRenderer {
	return &CodeBlockRenderer{
		Registry:    MapRegistry{"js": "js-grammar"},
		Highlighter: hl,
		Logger:      logger,
	}
}

func TestCodeBlockRenderer_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		lang     CodeLanguage
		expected string
	}{
		{
			name:     "plain",
			code:     "ls -la\n",
			lang:     Ordinary(""),
			expected: "<pre><code>ls -la\n</code></pre>\n",
		},
		{
			name:     "executable",
			code:     "ls -la\n",
			lang:     Executable(""),
			expected: "<pre class=\"executable\"><code>ls -la\n</code></pre>\n",
		},
		{
			name:     "executable ignores registered language",
			code:     "const x = 1;\n",
			lang:     Executable("js"),
			expected: "<pre class=\"executable\"><code>const x = 1;\n</code></pre>\n",
		},
		{
			name:     "registered language is highlighted",
			code:     "const x = 1;\n",
			lang:     Ordinary("js"),
			expected: "<pre><code class=\"js\"><b>const x = 1;</b>\n</code></pre>\n",
		},
		{
			name:     "unregistered language is escaped",
			code:     "x < y && z\n",
			lang:     Ordinary("foobar"),
			expected: "<pre><code class=\"foobar\">x &lt; y &amp;&amp; z\n</code></pre>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(&fakeHighlighter{}, nil)
			result, err := r.Render(tt.code, tt.lang, false)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCodeBlockRenderer_TrailingNewline(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"no newline", "x", "<pre><code>x\n</code></pre>\n"},
		{"one newline", "x\n", "<pre><code>x\n</code></pre>\n"},
		{"two newlines", "x\n\n", "<pre><code>x\n\n</code></pre>\n"},
		{"empty", "", "<pre><code>\n</code></pre>\n"},
	}

	r := &CodeBlockRenderer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Render(tt.code, Ordinary(""), false)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCodeBlockRenderer_Escaping(t *testing.T) {
	r := &CodeBlockRenderer{}

	result, err := r.Render(`<script>alert("x" & 'y')</script>`, Ordinary(""), false)
	require.NoError(t, err)
	assert.Equal(t, "<pre><code>&lt;script&gt;alert(&quot;x&quot; &amp; &#39;y&#39;)&lt;/script&gt;\n</code></pre>\n", result)
	assert.NotContains(t, result, "<script>")
}

func TestCodeBlockRenderer_AlreadyEscaped(t *testing.T) {
	r := &CodeBlockRenderer{}

	result, err := r.Render("a &amp; b", Ordinary(""), true)
	require.NoError(t, err)
	assert.Equal(t, "<pre><code>a &amp; b\n</code></pre>\n", result)
}

func TestCodeBlockRenderer_NoDoubleEscaping(t *testing.T) {
	r := newTestRenderer(&fakeHighlighter{}, nil)

	for _, lang := range []CodeLanguage{Ordinary(""), Ordinary("js"), Ordinary("nope"), Executable("js")} {
		t.Run(lang.Encode(), func(t *testing.T) {
			result, err := r.Render("a && b\n", lang, false)
			require.NoError(t, err)
			assert.Contains(t, result, "&amp;&amp;")
			assert.NotContains(t, result, "&amp;amp;")
		})
	}
}

func TestCodeBlockRenderer_UnchangedHighlightStaysUnescaped(t *testing.T) {
	hl := &fakeHighlighter{identity: true}
	r := newTestRenderer(hl, nil)

	result, err := r.Render("a < b\n", Ordinary("js"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, hl.calls)
	assert.Equal(t, "<pre><code class=\"js\">a &lt; b\n</code></pre>\n", result)
}

func TestCodeBlockRenderer_MissingGrammarIsLogged(t *testing.T) {
	hl := &fakeHighlighter{}
	logger := &recordingLogger{}
	r := newTestRenderer(hl, logger)

	result, err := r.Render("plain <text>\n", Ordinary("zzz-nonexistent"), false)
	require.NoError(t, err)
	assert.Equal(t, "<pre><code class=\"zzz-nonexistent\">plain &lt;text&gt;\n</code></pre>\n", result)
	assert.Equal(t, 0, hl.calls)
	require.Len(t, logger.messages, 1)
	assert.Contains(t, logger.messages[0], `"zzz-nonexistent"`)
}

func TestCodeBlockRenderer_ExecutableSkipsHighlighter(t *testing.T) {
	hl := &fakeHighlighter{}
	logger := &recordingLogger{}
	r := newTestRenderer(hl, logger)

	_, err := r.Render("whatever\n", Executable("zzz"), false)
	require.NoError(t, err)
	assert.Equal(t, 0, hl.calls)
	assert.Empty(t, logger.messages)
}

func TestCodeBlockRenderer_HighlighterError(t *testing.T) {
	boom := errors.New("lexer exploded")
	r := newTestRenderer(&fakeHighlighter{err: boom}, nil)

	_, err := r.Render("x\n", Ordinary("js"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestCodeBlockRenderer_CustomExecutableClass(t *testing.T) {
	r := &CodeBlockRenderer{ExecutableClass: `run "me"`}

	result, err := r.Render("ls\n", Executable(""), false)
	require.NoError(t, err)
	assert.Equal(t, "<pre class=\"run &quot;me&quot;\"><code>ls\n</code></pre>\n", result)
}

func TestCodeBlockRenderer_LanguageClassIsEscaped(t *testing.T) {
	r := &CodeBlockRenderer{}

	result, err := r.Render("x\n", Ordinary(`a"b`), false)
	require.NoError(t, err)
	assert.Equal(t, "<pre><code class=\"a&quot;b\">x\n</code></pre>\n", result)
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"plain", "plain"},
		{"&", "&amp;"},
		{"<>", "&lt;&gt;"},
		{`"'`, "&quot;&#39;"},
		{"&lt;", "&amp;lt;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeHTML(tt.input))
		})
	}
}
