package main

import (
	"os"
	"os/signal"

	"github.com/relevohq/relevo/pkg/log"
	"github.com/relevohq/relevo/pkg/srv"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the offline extraction worker",
	Long:  `Subscribes to interview-completed events and extracts the described business processes from full transcripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting relevo extraction worker")

		services := NewWorkerServices(ctx)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("relevo worker has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
