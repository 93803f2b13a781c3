// Package dispatch provides the dispatch command.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/api"
	"github.com/open-cli-collective/intervirt-md/internal/config"
	"github.com/open-cli-collective/intervirt-md/internal/view"
	"github.com/open-cli-collective/intervirt-md/pkg/md"
)

type dispatchOptions struct {
	all     bool
	output  string
	noColor bool
	stdout  io.Writer
}

// NewCmdDispatch creates the dispatch command.
func NewCmdDispatch() *cobra.Command {
	opts := &dispatchOptions{}

	cmd := &cobra.Command{
		Use:   "dispatch <file> [index]",
		Short: "Send an executable block to the endpoint",
		Long: `Send the code of an executable block to the configured endpoint, the same
way clicking the block on a standalone page does.

Block indexes are listed by 'ivmd blocks'.`,
		Example: `  # Send the first executable block
  ivmd dispatch lab.md 0

  # Send every executable block in order
  ivmd dispatch lab.md --all`,
		Args: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if all {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
			if err != nil {
				return fmt.Errorf("failed to load config: %w (run 'ivmd init' to configure)", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w (run 'ivmd init' to configure)", err)
			}
			output, _ := cmd.Flags().GetString("output")
			opts.output = cfg.ResolveOutput(output, cmd.Flags().Changed("output"))

			index := -1
			if !opts.all {
				index, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid block index %q", args[1])
				}
			}
			return runDispatch(args[0], index, opts, api.NewClient(cfg.Endpoint, cfg.Token))
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Send every executable block in document order")

	return cmd
}

func runDispatch(file string, index int, opts *dispatchOptions, client *api.Client) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	source, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	blocks, err := md.ExecutableBlocks(source)
	if err != nil {
		return fmt.Errorf("failed to parse markdown: %w", err)
	}

	var selected []md.Block
	if opts.all {
		selected = blocks
	} else {
		if index < 0 || index >= len(blocks) {
			return fmt.Errorf("block %d not found: %s has %d executable blocks", index, file, len(blocks))
		}
		selected = blocks[index : index+1]
	}
	if len(selected) == 0 {
		return fmt.Errorf("no executable blocks in %s", file)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)

	results := make([]*api.ExecuteResponse, 0, len(selected))
	for _, b := range selected {
		resp, err := client.Execute(context.Background(), &api.ExecuteRequest{
			Code:     b.Code,
			Language: b.Language,
			Index:    b.Index,
			Source:   filepath.Base(file),
		})
		if err != nil {
			return fmt.Errorf("failed to dispatch block %d: %w", b.Index, err)
		}
		results = append(results, resp)

		if renderer.Format() == view.FormatJSON {
			continue
		}
		renderer.Success(fmt.Sprintf("Dispatched block %d (line %d)", b.Index, b.Line))
		if resp.Status != "" {
			renderer.RenderKeyValue("Status", resp.Status)
		}
		if resp.ID != "" {
			renderer.RenderKeyValue("ID", resp.ID)
		}
		if resp.URL != "" {
			renderer.RenderKeyValue("URL", resp.URL)
		}
		if resp.Output != "" {
			renderer.RenderText(resp.Output)
		}
	}

	if renderer.Format() == view.FormatJSON {
		if !opts.all {
			return renderer.RenderJSON(results[0])
		}
		return renderer.RenderJSON(results)
	}
	return nil
}
