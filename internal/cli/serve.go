package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pablasso/quadro/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr, dataFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task API server",
		Long:  `Serve the task API over HTTP. Tasks are kept in memory and saved to --data-file after every change.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			cfg := e.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("data-file") {
				cfg.DataFile = dataFile
			}

			store := server.OpenStore(cfg.DataFile, e.log)
			srv := server.New(store, e.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(cfg.Addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			e.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "JSON file the tasks are saved to")
	return cmd
}
