package main

import (
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <session-id>",
	Short: "Export a session's tree visualization",
	Long:  `Loads a persisted session and outputs a Mermaid diagram (graph TD) representing its component tree.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		store := getStore(cmd)

		snap, err := store.Load(cmd.Context(), sessionID)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(snap, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
