package main

import (
	"os"
	"os/signal"

	"github.com/relevohq/relevo/pkg/log"
	"github.com/relevohq/relevo/pkg/srv"
	"github.com/spf13/cobra"
)

var (
	serveEmployeeID     string
	serveOrganizationID string
	serveLanguage       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an interview session with the agent",
	Long:  `Starts the interview agent and runs one console session: context enrichment, per-turn process detection, and completion handling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting relevo interview agent")

		services := NewServeServices(ctx, stop, serveEmployeeID, serveOrganizationID, serveLanguage)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("relevo has been shut down gracefully")

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveEmployeeID, "employee", "", "id of the employee to interview")
	serveCmd.Flags().StringVar(&serveOrganizationID, "organization", "", "organization id")
	serveCmd.Flags().StringVar(&serveLanguage, "language", "", "interview language (defaults to DEFAULT_LANGUAGE)")
	serveCmd.MarkFlagRequired("employee")
	rootCmd.AddCommand(serveCmd)
}
