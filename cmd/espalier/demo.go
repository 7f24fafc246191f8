package main

import (
	"fmt"
	"os"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the interactive dashboard demo",
	Long: `Mounts the demo dashboard component and drives it from the terminal.
Type '+', 'reset' or 'flip' to send messages; 'exit' to leave.`,
	Run: func(cmd *cobra.Command, args []string) {
		headless, _ := cmd.Flags().GetBool("headless")
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			headless = true
		}

		reg, err := newDemoRegistry()
		if err != nil {
			fmt.Printf("Error building registry: %v\n", err)
			os.Exit(1)
		}

		eng := espalier.New(espalier.WithRegistry(reg))
		if _, err := eng.MountNamed("dashboard", ports.MountConfig{AppState: dashboardState{}}); err != nil {
			fmt.Printf("Error mounting dashboard: %v\n", err)
			os.Exit(1)
		}

		if !headless {
			tui.PrintBanner()
		}

		r := espalier.NewRunner()
		r.Input = os.Stdin
		r.Output = os.Stdout
		r.Headless = headless
		r.Parse = parseDemoInput
		if !headless {
			r.Renderer = tui.NewRenderer()
		}

		if err := r.Run(eng); err != nil {
			fmt.Printf("Demo error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Bool("headless", false, "Disable banner, prompt and ANSI rendering")
}
