package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinicboard/medassist/internal/appointment"
	"github.com/clinicboard/medassist/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the clinic web app",
	Long: `Start the clinic web app: the appointment booking form, the appointment
list, and the chat widget. The widget talks to the assistant API server,
which must be running separately (see "medassist rag" or "medassist run").`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := appointment.NewStore(cfg.Storage.AppointmentsFile)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	server, err := web.NewServer(addr, store, cfg.RAGBaseURL())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}
