package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a component runtime for stateful trees",
	Long: `Espalier mounts trees of stateful components and routes messages,
state commits and actions through them, independently of any rendering layer.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		levelStr, _ := cmd.Flags().GetString("log-level")
		level := slog.LevelInfo
		if err := level.UnmarshalText([]byte(levelStr)); err != nil {
			fmt.Fprintf(os.Stderr, "Unknown log level %q, using info\n", levelStr)
		}
		slog.SetDefault(logging.New(level))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("dir", ".", "Directory for file-backed session storage")
}
