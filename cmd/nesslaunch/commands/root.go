package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nesslaunch/nesslaunch/pkg/config"
	"github.com/nesslaunch/nesslaunch/pkg/logging"
)

const cliExecutable = "nesslaunch"

// NewCommand constructs the top-level nesslaunch CLI command, wiring global
// flags, configuration loading and logging setup.
func NewCommand() *cobra.Command {
	var (
		configFile string
		logLevel   string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Launch Nessus scans from the command line",
		Long: `nesslaunch authenticates against a Nessus server's management interface
and triggers previously defined scans, launching them concurrently with
per-scan retry and backoff.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()

			if err := logging.ConfigureGlobalLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			ctx := config.WithContext(cmd.Context(), cfg)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newLaunchCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// ExitCode maps an error returned by Execute to a process exit code:
// 0 for success, 2 for configuration/usage errors, 1 otherwise. Per-scan
// failures never surface here; only the authentication phase does.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}
