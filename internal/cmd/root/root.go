// Package root provides the root command for the ivmd CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/internal/cmd/blocks"
	"github.com/open-cli-collective/intervirt-md/internal/cmd/completion"
	"github.com/open-cli-collective/intervirt-md/internal/cmd/configcmd"
	"github.com/open-cli-collective/intervirt-md/internal/cmd/dispatch"
	"github.com/open-cli-collective/intervirt-md/internal/cmd/importcmd"
	initcmd "github.com/open-cli-collective/intervirt-md/internal/cmd/init"
	"github.com/open-cli-collective/intervirt-md/internal/cmd/render"
	"github.com/open-cli-collective/intervirt-md/internal/version"
)

// NewCmdRoot creates the root command for ivmd.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ivmd",
		Short: "Render Markdown with executable code blocks",
		Long: `ivmd renders Markdown to HTML for interactive labs.

Fenced code blocks closed with ` + "```{{execute}}" + ` become executable blocks that
a page can send to an endpoint when clicked. Other code blocks are syntax
highlighted.

Get started by running: ivmd render lab.md --standalone -f lab.html`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/ivmd/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cmd.SetVersionTemplate("ivmd version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(render.NewCmdRender())
	cmd.AddCommand(blocks.NewCmdBlocks())
	cmd.AddCommand(dispatch.NewCmdDispatch())
	cmd.AddCommand(importcmd.NewCmdImport())
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
