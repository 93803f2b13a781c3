// Package importcmd provides the import command.
package importcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/internal/config"
	"github.com/open-cli-collective/intervirt-md/internal/view"
	"github.com/open-cli-collective/intervirt-md/pkg/md"
)

type importOptions struct {
	out             string
	executableClass string
	noColor         bool
	stdin           io.Reader
	stdout          io.Writer
	stderr          io.Writer
}

// NewCmdImport creates the import command.
func NewCmdImport() *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import [file.html]",
		Short: "Convert HTML back to Markdown",
		Long: `Convert an HTML page to Markdown. Executable blocks, <pre> elements with the
executable class, come back as fences closed with {{execute}}.

Reads from stdin when no file is given or the file is "-".`,
		Example: `  # Recover the source of a rendered page
  ivmd import lab.html -f lab.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()

			if !cmd.Flags().Changed("executable-class") {
				configPath, _ := cmd.Flags().GetString("config")
				if cfg, err := config.LoadWithEnv(config.ResolvePath(configPath)); err == nil && cfg.ExecutableClass != "" {
					opts.executableClass = cfg.ExecutableClass
				}
			}

			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runImport(file, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "f", "", "Write Markdown to this file instead of stdout")
	cmd.Flags().StringVar(&opts.executableClass, "executable-class", md.DefaultExecutableClass, "CSS class that marks executable blocks")

	return cmd
}

func runImport(file string, opts *importOptions) error {
	var (
		data []byte
		err  error
	)
	if file == "" || file == "-" {
		data, err = io.ReadAll(opts.stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	markdown, err := md.FromHTMLWithOptions(string(data), md.ImportOptions{
		ExecutableClass: opts.executableClass,
	})
	if err != nil {
		return fmt.Errorf("failed to convert HTML: %w", err)
	}

	if opts.out == "" {
		_, err := io.WriteString(opts.stdout, markdown)
		return err
	}

	if err := os.WriteFile(opts.out, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	renderer := view.NewRenderer(view.FormatTable, opts.noColor)
	renderer.SetWriter(opts.stderr)
	renderer.Success(fmt.Sprintf("Imported %s", opts.out))
	return nil
}
