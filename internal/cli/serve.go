package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/stockboard/internal/app/runtime"
	"github.com/R3E-Network/stockboard/internal/config"
	"github.com/R3E-Network/stockboard/internal/logging"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inventory API and realtime feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer()
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			log := logging.New("stockboard", cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := runtime.NewApplication(ctx, cfg, log)
			if err != nil {
				return WrapExitError(ExitCommandError, "start server", err)
			}

			runErr := application.Run(ctx)
			if err := application.Shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("Graceful shutdown failed")
			}
			if runErr != nil {
				return WrapExitError(ExitFailure, "server stopped", runErr)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")
	return cmd
}
