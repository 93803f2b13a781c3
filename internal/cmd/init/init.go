// Package init provides the init command for ivmd.
package init

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/api"
	"github.com/open-cli-collective/intervirt-md/internal/config"
	"github.com/open-cli-collective/intervirt-md/pkg/md"
)

const verifyTimeout = 10 * time.Second

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		endpoint string
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize ivmd configuration",
		Long: `Initialize ivmd with rendering defaults and an optional dispatch endpoint.

The endpoint receives the code of executable blocks from 'ivmd dispatch'
and from standalone pages rendered with --standalone. The configuration
is saved to ~/.config/ivmd/config.yml.`,
		Example: `  # Interactive setup
  ivmd init

  # Pre-populate the endpoint
  ivmd init --endpoint https://labs.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runInit(cmd.OutOrStdout(), config.ResolvePath(configPath), endpoint, noVerify)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Dispatch endpoint URL (e.g., https://labs.example.com)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip endpoint verification")

	return cmd
}

func runInit(w io.Writer, configPath, prefillEndpoint string, noVerify bool) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			_, _ = fmt.Fprintln(w, "Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{
		Endpoint:        prefillEndpoint,
		Style:           md.DefaultStyle,
		ExecutableClass: md.DefaultExecutableClass,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dispatch endpoint").
				Description("Where executable blocks are sent (leave empty to only render)").
				Placeholder("https://labs.example.com").
				Value(&cfg.Endpoint),

			huh.NewInput().
				Title("Token (optional)").
				Description("Sent as a Bearer token to the endpoint").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Token),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Highlight style").
				Options(huh.NewOptions(styles.Names()...)...).
				Value(&cfg.Style),

			huh.NewInput().
				Title("Executable class").
				Description("CSS class placed on executable <pre> elements").
				Value(&cfg.ExecutableClass).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("class is required")
					}
					return nil
				}),

			huh.NewConfirm().
				Title("Sanitize rendered HTML?").
				Value(&cfg.Sanitize),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	return saveConfig(w, cfg, configPath, noVerify, nil)
}

// saveConfig verifies and writes a completed configuration. An empty
// endpoint skips verification since rendering needs no endpoint.
func saveConfig(w io.Writer, cfg *config.Config, configPath string, noVerify bool, httpClient *http.Client) error {
	cfg.NormalizeEndpoint()

	if cfg.Endpoint != "" {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		if !noVerify {
			_, _ = fmt.Fprint(w, "Verifying endpoint... ")
			if err := verifyConnection(cfg, httpClient); err != nil {
				_, _ = fmt.Fprintln(w, "failed!")
				return fmt.Errorf("endpoint verification failed: %w", err)
			}
			_, _ = fmt.Fprintln(w, "success!")
		}
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\nConfiguration saved to %s\n", configPath)
	_, _ = fmt.Fprintln(w, "\nYou're all set! Try running:")
	_, _ = fmt.Fprintln(w, "  ivmd render lab.md --standalone -f lab.html")
	if cfg.Endpoint != "" {
		_, _ = fmt.Fprintln(w, "  ivmd dispatch lab.md --index 0")
	}

	return nil
}

func verifyConnection(cfg *config.Config, httpClient *http.Client) error {
	client := api.NewClient(cfg.Endpoint, cfg.Token)
	if httpClient == nil {
		httpClient = &http.Client{Timeout: verifyTimeout}
	}
	client.SetHTTPClient(httpClient)

	_, err := client.Ping(context.Background())
	if err == nil {
		return nil
	}

	var apiErr *api.ErrorResponse
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("authentication failed - check your token")
		case http.StatusForbidden:
			return fmt.Errorf("access denied - check your permissions")
		}
	}
	return err
}
