package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/enginehost/internal/engine"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List all registered engines",
	Long:  `Shows the engines compiled into this binary.`,
	RunE:  runEngines,
}

func runEngines(_ *cobra.Command, _ []string) error {
	engines := engine.List()

	if len(engines) == 0 {
		fmt.Println("No engines available.")
		return nil
	}

	fmt.Println("Available engines:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, e := range engines {
		if len(e.Name) > maxNameLen {
			maxNameLen = len(e.Name)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxNameLen, "Name", "Title")
	fmt.Printf("  %-*s  %s\n", maxNameLen, "----", "-----")

	for _, e := range engines {
		marker := ""
		if e.Name == cfg.Engine.Name {
			marker = " (default)"
		}
		fmt.Printf("  %-*s  %s%s\n", maxNameLen, e.Name, e.Title, marker)
	}

	fmt.Println()
	fmt.Println("Run 'enginehost run --engine <name>' to start one.")
	return nil
}
