package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clinicboard/medassist/internal/appointment"
	"github.com/clinicboard/medassist/internal/supervisor"
	"github.com/clinicboard/medassist/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the assistant server under supervision, then the web app",
	Long: `Start everything: clean up any stale assistant server still bound to
the assistant port, launch "medassist rag" as a supervised child with
its output captured to a log file, wait for it to bind the port, and
then run the clinic web app in the foreground. Interrupting the web
app tears the child down and removes its pid file.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// statusf prints operator-facing progress. Glyphs only on a terminal.
func statusf(glyph, format string, args ...interface{}) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf(glyph+" "+format+"\n", args...)
		return
	}
	fmt.Printf(format+"\n", args...)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hosted := supervisor.ResolveHosted(cfg.Supervisor.Hosted)
	if hosted {
		statusf("*", "managed environment detected: port sweep disabled")
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate own executable: %w", err)
	}

	childArgs := []string{"rag"}
	if configFile != "" {
		childArgs = append(childArgs, "--config", configFile)
	}

	sup := supervisor.New(supervisor.Config{
		Port:    cfg.RAG.Port,
		PIDFile: cfg.Supervisor.PIDFile,
		LogFile: cfg.Supervisor.LogFile,
		Hosted:  hosted,
		Command: exe,
		Args:    childArgs,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	statusf("*", "checking port %d for a stale assistant server", cfg.RAG.Port)
	if err := sup.Cleanup(ctx); err != nil {
		if !hosted {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		statusf("!", "cleanup failed in managed environment, continuing: %v", err)
	}

	pid, err := sup.Launch(ctx)
	if err != nil {
		return err
	}
	statusf("*", "assistant server started (pid %d), log: %s", pid, cfg.Supervisor.LogFile)

	// Tear the child down no matter how the web app exits. The signal
	// context is likely cancelled by then, so shutdown gets its own.
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sup.Shutdown(shutdownCtx)
		statusf("*", "assistant server stopped")
	}()

	if sup.WaitReady(ctx) {
		statusf("*", "assistant API ready on %s", cfg.RAGBaseURL())
	} else {
		statusf("!", "assistant API not confirmed on port %d; check %s", cfg.RAG.Port, cfg.Supervisor.LogFile)
	}

	store := appointment.NewStore(cfg.Storage.AppointmentsFile)
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	server, err := web.NewServer(addr, store, cfg.RAGBaseURL())
	if err != nil {
		return err
	}

	statusf("*", "clinic app on http://%s", addr)
	return server.Run(ctx)
}
