// Package render provides the render command.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/internal/config"
	"github.com/open-cli-collective/intervirt-md/internal/view"
	"github.com/open-cli-collective/intervirt-md/pkg/md"
)

type renderOptions struct {
	out             string
	standalone      bool
	sanitize        bool
	style           string
	executableClass string
	noHighlight     bool
	title           string
	open            bool
	noColor         bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render Markdown to HTML",
		Long: `Render a Markdown document to HTML.

Fenced code blocks closed with ` + "```{{execute}}" + ` become executable blocks:
they are not highlighted and carry the executable class so a page can make
them clickable. Other fenced blocks are highlighted when a grammar for their
language is known.

Reads from stdin when no file is given or the file is "-".`,
		Example: `  # Render a file to stdout
  ivmd render lab.md

  # Write a complete page with styles and click handling
  ivmd render lab.md --standalone -f lab.html

  # Write the page and open it
  ivmd render lab.md --standalone -f lab.html --open

  # Render from stdin without highlighting
  cat lab.md | ivmd render --no-highlight`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyConfig(cmd, opts, cfg)

			if opts.open && opts.out == "" {
				return fmt.Errorf("--open requires --out")
			}

			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runRender(file, opts, cfg.Endpoint)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "f", "", "Write HTML to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.standalone, "standalone", false, "Wrap the fragment in a complete HTML page")
	cmd.Flags().BoolVar(&opts.sanitize, "sanitize", false, "Sanitize the rendered HTML")
	cmd.Flags().StringVar(&opts.style, "style", md.DefaultStyle, "Highlight style used for --standalone CSS")
	cmd.Flags().StringVar(&opts.executableClass, "executable-class", md.DefaultExecutableClass, "CSS class for executable blocks")
	cmd.Flags().BoolVar(&opts.noHighlight, "no-highlight", false, "Disable syntax highlighting")
	cmd.Flags().StringVar(&opts.title, "title", "", "Page title for --standalone (default: file name)")
	cmd.Flags().BoolVar(&opts.open, "open", false, "Open the written file in a browser (requires --out)")

	return cmd
}

// applyConfig fills options the user did not set on the command line.
func applyConfig(cmd *cobra.Command, opts *renderOptions, cfg *config.Config) {
	if !cmd.Flags().Changed("style") && cfg.Style != "" {
		opts.style = cfg.Style
	}
	if !cmd.Flags().Changed("executable-class") && cfg.ExecutableClass != "" {
		opts.executableClass = cfg.ExecutableClass
	}
	if !cmd.Flags().Changed("sanitize") && cfg.Sanitize {
		opts.sanitize = true
	}
}

func runRender(file string, opts *renderOptions, endpoint string) error {
	source, err := readSource(file, opts.stdin)
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.FormatTable, opts.noColor)
	renderer.SetErrWriter(opts.stderr)

	convOpts := []md.Option{
		md.WithLogger(view.NewWarnLogger(renderer)),
		md.WithExecutableClass(opts.executableClass),
		md.WithSanitize(opts.sanitize),
		md.WithStyle(opts.style),
	}
	if opts.noHighlight {
		convOpts = append(convOpts, md.WithoutHighlighting())
	}

	html, err := md.New(convOpts...).ToHTML(source)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	var buf bytes.Buffer
	if opts.standalone {
		page := md.PageOptions{
			Title:           pageTitle(opts.title, file),
			ExecutableClass: opts.executableClass,
			Endpoint:        endpoint,
		}
		if !opts.noHighlight {
			page.CSS, err = md.NewChromaRegistry(opts.style).CSS()
			if err != nil {
				return fmt.Errorf("failed to generate highlight styles: %w", err)
			}
		}
		if err := md.RenderPage(&buf, page, html); err != nil {
			return fmt.Errorf("failed to render page: %w", err)
		}
	} else {
		buf.WriteString(html)
	}

	if opts.out == "" {
		_, err := opts.stdout.Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.out, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	renderer.SetWriter(opts.stderr)
	renderer.Success(fmt.Sprintf("Rendered %s", opts.out))

	if opts.open {
		return openInBrowser(opts.out)
	}
	return nil
}

func readSource(file string, stdin io.Reader) ([]byte, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func pageTitle(title, file string) string {
	if title != "" {
		return title
	}
	if file == "" || file == "-" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}
