// Command medassist runs the clinic assistant: a booking web app, an
// assistant API server backed by a RAG pipeline, and a supervisor that
// manages the assistant server as a child process.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clinicboard/medassist/internal/config"
	"github.com/clinicboard/medassist/internal/debug"
)

// Version can be overridden at build time with:
//
//	-ldflags "-X main.Version=x.y.z"
var Version = "0.2.0"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "medassist",
	Short: "Clinic assistant: appointment booking and a RAG-backed chatbot",
	Long: `Medassist serves a small clinic web app (appointment booking backed by a
flat JSON file, plus a chat widget) and an assistant API server that
answers questions with a retrieval-augmented pipeline over hosted
vector-search and chat-completion services.

Typical usage:
  medassist run       Start everything (supervised assistant + web app)
  medassist serve     Start only the web app
  medassist rag       Start only the assistant API server
  medassist mcp       Expose booking and chat as MCP tools over stdio

Set MEDASSIST_DEBUG for verbose logging; set MEDASSIST_DEBUG_LOG to a
file name to additionally capture logs under the user cache directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if name := os.Getenv("MEDASSIST_DEBUG_LOG"); name != "" {
			return debug.SetLogFile(name)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the medassist version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("medassist v%s\n", Version)
	},
}

// loadConfig loads .env secrets and the KDL configuration.
func loadConfig() (*config.Config, error) {
	// Secrets may live in a .env file next to the project; a missing
	// file is fine.
	_ = godotenv.Load()

	if configFile != "" {
		return config.LoadConfigFile(configFile)
	}
	return config.LoadConfig(".")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a .medassist.kdl config file")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	err := rootCmd.Execute()
	debug.Close()
	if err != nil {
		os.Exit(1)
	}
}
