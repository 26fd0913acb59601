package commands

import (
	"github.com/spf13/cobra"

	"wealthwise/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "wealthwise",
		Short:   "Personal income and expense ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (environment variables take precedence)")

	rootCmd.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
		newWorkerCommand(&configPath),
		newInspectCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte("wealthwise " + buildinfo.String() + "\n"))
			return err
		},
	}
}
