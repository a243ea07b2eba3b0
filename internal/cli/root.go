// Package cli is the quadro command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pablasso/quadro/internal/version"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	apiURL     string
	logLevel   string
	logFile    string
}

// NewRootCmd builds the command tree. Running the root command with no
// subcommand opens the board.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "quadro",
		Short:         "Kanban board for a remote task API",
		Long:          `Quadro shows the tasks of a task API as a three-lane Kanban board. Cards move optimistically and are reconciled with the server's answer.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, g)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/quadro/config.yaml)")
	pf.StringVar(&g.apiURL, "api-url", "", "Base URL of the task API")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.logFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(newBoardCmd(g))
	rootCmd.AddCommand(newTasksCmd(g))
	rootCmd.AddCommand(newServeCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
