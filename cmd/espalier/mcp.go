package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/aretw0/espalier/pkg/adapters/mcp"
	"github.com/aretw0/espalier/pkg/session"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the espalier engine as an MCP Server over stdio.
This allows AI agents (like Claude Desktop) to mount components and
dispatch messages as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := newDemoRegistry()
		if err != nil {
			log.Fatalf("Error building registry: %v", err)
		}

		sessions := session.NewManager(session.WithLogger(slog.Default()))
		srv := mcp.NewServer(sessions, reg)

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		slog.Info("Starting Espalier MCP Server (Stdio)...")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP Server execution failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
