package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nesslaunch/nesslaunch/pkg/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  `Prints the merged configuration (defaults, file, environment, flags) as YAML. The password is redacted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := config.FromContext(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not loaded")
			}

			if cfg.Nessus.Password != "" {
				cfg.Nessus.Password = "********"
			}

			out, err := yaml.Marshal(configView(cfg))
			if err != nil {
				return fmt.Errorf("marshal configuration: %w", err)
			}

			cmd.Print(string(out))
			return nil
		},
	}
}

// configView rebuilds the config as a plain map so the YAML output uses the
// same keys a config file would.
func configView(cfg config.Config) map[string]interface{} {
	return map[string]interface{}{
		"log": map[string]interface{}{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"nessus": map[string]interface{}{
			"host":       cfg.Nessus.Host,
			"username":   cfg.Nessus.Username,
			"password":   cfg.Nessus.Password,
			"insecure":   cfg.Nessus.Insecure,
			"user_agent": cfg.Nessus.UserAgent,
		},
		"launch": map[string]interface{}{
			"scan_ids":           cfg.Launch.ScanIDs,
			"retry_attempts":     cfg.Launch.RetryAttempts,
			"retry_initial_wait": cfg.Launch.RetryInitialWait.String(),
			"retry_max_wait":     cfg.Launch.RetryMaxWait.String(),
		},
	}
}
