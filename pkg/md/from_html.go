package md

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// execPlaceholder marks where an executable block goes back in after
// conversion. Letters and digits only, so the converter leaves it untouched.
const (
	execPlaceholderPrefix = "IVMDEXEC"
	execPlaceholderSuffix = "END"
)

var (
	rePreBlock  = regexp.MustCompile(`(?s)<pre class="([^"]*)"><code>(.*?)</code></pre>`)
	reCodeClass = regexp.MustCompile(`<pre><code class="([\w+#-]+)">`)
	reTags      = regexp.MustCompile(`<[^>]*>`)
)

// ImportOptions configures the HTML to markdown conversion.
type ImportOptions struct {
	// ExecutableClass identifies executable <pre> elements.
	ExecutableClass string
}

// FromHTML converts rendered HTML back to markdown, restoring executable
// blocks as fences closed with the execute marker.
func FromHTML(htmlText string) (string, error) {
	return FromHTMLWithOptions(htmlText, ImportOptions{})
}

// FromHTMLWithOptions is FromHTML with configurable options.
func FromHTMLWithOptions(htmlText string, opts ImportOptions) (string, error) {
	if htmlText == "" {
		return "", nil
	}

	class := opts.ExecutableClass
	if class == "" {
		class = DefaultExecutableClass
	}

	processed, blocks := extractExecutableBlocks(htmlText, class)

	// ordinary blocks carry a bare language class
	processed = reCodeClass.ReplaceAllStringFunc(processed, func(match string) string {
		lang := reCodeClass.FindStringSubmatch(match)[1]
		if strings.HasPrefix(lang, "language-") {
			return match
		}
		return `<pre><code class="language-` + lang + `">`
	})

	markdown, err := htmltomarkdown.ConvertString(processed)
	if err != nil {
		return "", err
	}

	markdown = strings.TrimSpace(markdown)
	for i, code := range blocks {
		markdown = strings.Replace(markdown, execPlaceholder(i), executableFence(code), 1)
	}

	// fences are only recognized when followed by a newline
	return markdown + "\n", nil
}

func extractExecutableBlocks(htmlText, class string) (string, []string) {
	var blocks []string
	out := rePreBlock.ReplaceAllStringFunc(htmlText, func(match string) string {
		sub := rePreBlock.FindStringSubmatch(match)
		if !hasClass(sub[1], class) {
			return match
		}
		code := html.UnescapeString(reTags.ReplaceAllString(sub[2], ""))
		blocks = append(blocks, code)
		return "<p>" + execPlaceholder(len(blocks)-1) + "</p>"
	})
	return out, blocks
}

func hasClass(attr, class string) bool {
	want := strings.Fields(class)
	have := strings.Fields(attr)
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(want) > 0
}

func execPlaceholder(id int) string {
	return execPlaceholderPrefix + strconv.Itoa(id) + execPlaceholderSuffix
}

// executableFence rebuilds an executable fence without a language: the
// rendered <pre> keeps only the executable class, so the tag is not recoverable.
func executableFence(code string) string {
	return "```\n" + strings.TrimSuffix(code, "\n") + "\n```" + ExecuteMarker
}
