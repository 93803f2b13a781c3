package configcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/intervirt-md/api"
	"github.com/open-cli-collective/intervirt-md/internal/config"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity with the configured endpoint",
		Long:  `Test that ivmd can reach the configured dispatch endpoint with the current token.`,
		Example: `  # Test connection
  ivmd config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
			if err != nil {
				return fmt.Errorf("failed to load config: %w (run 'ivmd init' to configure)", err)
			}
			return runTest(cmd.OutOrStdout(), cfg, noColor, nil)
		},
	}

	return cmd
}

func runTest(w io.Writer, cfg *config.Config, noColor bool, httpClient *http.Client) error {
	if noColor {
		color.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w (run 'ivmd init' to configure)", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	_, _ = fmt.Fprintf(w, "Testing connection to %s...\n", cfg.Endpoint)

	client := api.NewClient(cfg.Endpoint, cfg.Token)
	if httpClient != nil {
		client.SetHTTPClient(httpClient)
	}

	resp, err := client.Ping(context.Background())
	if err != nil {
		var apiErr *api.ErrorResponse
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusUnauthorized:
				_, _ = red.Fprintln(w, "✗ Authentication failed: 401 Unauthorized")
				_, _ = fmt.Fprintln(w, "\nCheck your token with: ivmd config show")
				return fmt.Errorf("authentication failed")
			case http.StatusForbidden:
				_, _ = red.Fprintln(w, "✗ Access denied: 403 Forbidden")
				return fmt.Errorf("access denied")
			}
		}
		_, _ = red.Fprintln(w, "✗ Connection failed:", err)
		_, _ = fmt.Fprintln(w, "\nCheck your endpoint with: ivmd config show")
		_, _ = fmt.Fprintln(w, "Reconfigure with: ivmd init")
		return fmt.Errorf("connection failed: %w", err)
	}

	_, _ = green.Fprintln(w, "✓ Endpoint reachable")
	if resp.Message != "" {
		_, _ = fmt.Fprintf(w, "\nEndpoint says: %s\n", resp.Message)
	}

	return nil
}
