package cli

import (
	"github.com/spf13/cobra"

	"github.com/pablasso/quadro/internal/tui"
)

func newBoardCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Long:  `Open the Kanban board in the terminal. Connects to the task API at --api-url.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, g)
		},
	}
}

func runBoard(cmd *cobra.Command, g *globalFlags) error {
	// The board owns the terminal, so logs only go to --log-file.
	e, err := loadEnv(cmd, g, nil)
	if err != nil {
		return err
	}
	defer e.close()

	client, err := e.client()
	if err != nil {
		return err
	}

	e.log.WithField("api_url", client.BaseURL()).Info("opening board")
	return tui.Run(tui.Options{
		Remote:  client,
		Logger:  e.log,
		Context: cmd.Context(),
	})
}
