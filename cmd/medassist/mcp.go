package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/clinicboard/medassist/internal/appointment"
	"github.com/clinicboard/medassist/internal/debug"
	"github.com/clinicboard/medassist/internal/rag"
	"github.com/clinicboard/medassist/internal/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve clinic tools over MCP on stdio",
	Long: `Expose book_appointment, list_appointments and ask_assistant as MCP
tools over stdio, for use from agent hosts. ask_assistant requires the
same API keys as "medassist rag"; without them only the booking tools
are usable.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps := &tools.Deps{
		Store: appointment.NewStore(cfg.Storage.AppointmentsFile),
	}

	if generator, err := rag.NewGenerator(cfg.RAG); err != nil {
		debug.Warn("mcp", "ask_assistant disabled: %v", err)
	} else {
		retriever, err := rag.NewPineconeRetriever(cfg.RAG)
		if err != nil {
			debug.Warn("mcp", "retrieval disabled: %v", err)
			retriever = nil
		}
		deps.Pipeline = rag.NewPipeline(retriever, generator, cfg.RAG.TopK)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "medassist",
		Version: Version,
	}, nil)
	tools.Register(server, deps)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, &mcp.StdioTransport{})
}
