// Package blocks provides the blocks command.
package blocks

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/internal/config"
	"github.com/open-cli-collective/intervirt-md/internal/view"
	"github.com/open-cli-collective/intervirt-md/pkg/md"
)

const codeColumnWidth = 60

type blocksOptions struct {
	output  string
	noColor bool
	stdin   io.Reader
	stdout  io.Writer
}

// NewCmdBlocks creates the blocks command.
func NewCmdBlocks() *cobra.Command {
	opts := &blocksOptions{}

	cmd := &cobra.Command{
		Use:   "blocks [file]",
		Short: "List executable blocks in a document",
		Long: `List the executable code blocks of a Markdown document with their index,
language and line. The index is what 'ivmd dispatch' expects.`,
		Example: `  # List blocks
  ivmd blocks lab.md

  # Full code as JSON
  ivmd blocks lab.md -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			output, _ := cmd.Flags().GetString("output")
			opts.output = cfg.ResolveOutput(output, cmd.Flags().Changed("output"))
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()

			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runBlocks(file, opts)
		},
	}

	return cmd
}

func runBlocks(file string, opts *blocksOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	source, err := readSource(file, opts.stdin)
	if err != nil {
		return err
	}

	blocks, err := md.ExecutableBlocks(source)
	if err != nil {
		return fmt.Errorf("failed to parse markdown: %w", err)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)

	if renderer.Format() == view.FormatJSON {
		if blocks == nil {
			blocks = []md.Block{}
		}
		return renderer.RenderJSON(blocks)
	}

	if len(blocks) == 0 && renderer.Format() == view.FormatTable {
		renderer.RenderText("No executable blocks found.")
		return nil
	}

	headers := []string{"INDEX", "LANG", "LINE", "CODE"}
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []string{
			strconv.Itoa(b.Index),
			b.Language,
			strconv.Itoa(b.Line),
			view.Truncate(firstLine(b.Code), codeColumnWidth),
		})
	}
	renderer.RenderTable(headers, rows)

	return nil
}

// firstLine summarizes multi-line code as its first line plus a count.
func firstLine(code string) string {
	code = strings.TrimSuffix(code, "\n")
	first, rest, found := strings.Cut(code, "\n")
	if !found {
		return first
	}
	return fmt.Sprintf("%s (+%d lines)", first, strings.Count(rest, "\n")+1)
}

func readSource(file string, stdin io.Reader) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
