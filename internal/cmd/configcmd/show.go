package configcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/internal/config"
	"github.com/open-cli-collective/intervirt-md/internal/view"
	"github.com/open-cli-collective/intervirt-md/pkg/md"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current ivmd configuration with the source of each value.`,
		Example: `  # Show current config
  ivmd config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			configPath, _ := cmd.Flags().GetString("config")
			return runShow(cmd.OutOrStdout(), config.ResolvePath(configPath), noColor)
		},
	}

	return cmd
}

// maskToken keeps the first and last four characters of long tokens.
func maskToken(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

func runShow(w io.Writer, configPath string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	cfg, _ := config.LoadWithEnv(configPath)

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue, fallback string, envVars ...string) {
		_, _ = bold.Fprintf(w, "%-12s", label+":")
		if value == "" {
			if fallback != "" {
				_, _ = fmt.Fprint(w, fallback)
				_, _ = dim.Fprintln(w, "  (source: default)")
				return
			}
			_, _ = dim.Fprintln(w, "-")
			return
		}

		display := value
		if label == "Token" {
			display = maskToken(value)
		}
		_, _ = fmt.Fprint(w, display)

		source := "config"
		for _, envVar := range envVars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}
		if source == "config" && (fileErr != nil || fileValue != value) {
			source = "-"
		}

		_, _ = dim.Fprintf(w, "  (source: %s)\n", source)
	}

	printField("Endpoint", cfg.Endpoint, fileCfg.Endpoint, "", "IVMD_ENDPOINT", "INTERVIRT_ENDPOINT")
	printField("Token", cfg.Token, fileCfg.Token, "", "IVMD_TOKEN", "INTERVIRT_TOKEN")
	printField("Style", cfg.Style, fileCfg.Style, md.DefaultStyle, "IVMD_STYLE")
	printField("Class", cfg.ExecutableClass, fileCfg.ExecutableClass, md.DefaultExecutableClass, "IVMD_EXECUTABLE_CLASS")
	printField("Output", cfg.OutputFormat, fileCfg.OutputFormat, string(view.FormatTable))
	printField("Sanitize", fmt.Sprintf("%t", cfg.Sanitize), fmt.Sprintf("%t", fileCfg.Sanitize), "")

	_, _ = fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}

	return nil
}
