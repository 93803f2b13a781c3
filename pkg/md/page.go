package md

import (
	"html/template"
	"io"
	"strings"
)

// PageOptions configures a standalone HTML page.
type PageOptions struct {
	Title           string
	ExecutableClass string
	// CSS is extra style sheet content, typically ChromaRegistry.CSS().
	CSS string
	// Endpoint, when set, receives a POST to /execute for every click on an
	// executable block.
	Endpoint string
}

type pageData struct {
	Title    string
	Class    string
	Selector string
	CSS      template.CSS
	Endpoint string
	Body     template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
{{.CSS}}
pre.{{.Class}} { cursor: pointer; border-left: 3px solid #2da44e; }
pre.{{.Class}}:hover { background-color: #eef6ee; }
</style>
</head>
<body>
{{.Body}}
<script>
(function () {
  var endpoint = {{.Endpoint}};
  document.querySelectorAll({{.Selector}}).forEach(function (el, index) {
    el.addEventListener("click", function () {
      var code = el.textContent;
      el.dispatchEvent(new CustomEvent("ivmd:execute", {
        bubbles: true,
        detail: {code: code, index: index}
      }));
      if (endpoint) {
        fetch(endpoint + "/execute", {
          method: "POST",
          headers: {"Content-Type": "application/json"},
          body: JSON.stringify({code: code, index: index})
        });
      }
    });
  });
})();
</script>
</body>
</html>
`))

// RenderPage writes fragment wrapped in a complete HTML document whose
// executable blocks dispatch clicks. fragment must come from a Converter.
func RenderPage(w io.Writer, opts PageOptions, fragment string) error {
	classes := strings.Fields(opts.ExecutableClass)
	if len(classes) == 0 {
		classes = []string{DefaultExecutableClass}
	}

	title := opts.Title
	if title == "" {
		title = "ivmd"
	}

	return pageTemplate.Execute(w, pageData{
		Title:    title,
		Class:    classes[0],
		Selector: "pre." + strings.Join(classes, "."),
		CSS:      template.CSS(opts.CSS),
		Endpoint: strings.TrimSuffix(opts.Endpoint, "/"),
		Body:     template.HTML(fragment),
	})
}
