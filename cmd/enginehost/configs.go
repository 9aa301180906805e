package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/enginehost/internal/surface"
)

var (
	flagStrategy string
	flagVerbose  bool
)

var chosenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "List display configurations and the one negotiation picks",
	Long: `Show the display's configurations that pass the loose filter (at least
4 bits per color channel, ES2 renderable) in platform order, and mark the
first one matching the selection: depth and stencil at least the requested
sizes, color channels exactly equal.

Examples:
  enginehost configs
  enginehost configs --strategy translucent
  enginehost configs --verbose`,
	RunE: runConfigs,
}

func init() {
	configsCmd.Flags().StringVar(&flagStrategy, "strategy", "", "Selection strategy: opaque, translucent, custom")
	configsCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print every attribute of each configuration")
}

func runConfigs(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("strategy") {
		cfg.Surface.Strategy = flagStrategy
	}
	selection, err := cfg.Surface.Selection()
	if err != nil {
		return fmt.Errorf("reading surface selection: %w", err)
	}

	display, err := newDisplay()
	if err != nil {
		return fmt.Errorf("reading display configurations: %w", err)
	}

	list, err := surface.ListCandidates(display)
	if err != nil {
		return fmt.Errorf("listing configurations: %w", err)
	}

	chosen, chooseErr := surface.ChooseConfig(display, selection.Request())

	fmt.Printf("Selection: %s\n", selection)
	fmt.Println()
	if len(list) == 0 {
		fmt.Println("The display offers no usable configurations.")
		return nil
	}

	for _, c := range list {
		line := fmt.Sprintf("  %s", c)
		if chooseErr == nil && c.Config == chosen.Config {
			line = chosenStyle.Render(fmt.Sprintf("* %s", c))
		}
		fmt.Println(line)
		if flagVerbose {
			fmt.Printf("      %s\n", surface.DescribeConfig(display, c.Config))
		}
	}
	fmt.Println()

	if chooseErr != nil {
		var nm *surface.NoMatchingConfigError
		if errors.As(chooseErr, &nm) {
			fmt.Println("No configuration matches; the surface would fail to start.")
			return nil
		}
		return fmt.Errorf("choosing configuration: %w", chooseErr)
	}
	fmt.Printf("Chosen: %s\n", chosen)
	return nil
}
