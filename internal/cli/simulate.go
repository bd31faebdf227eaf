package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"whatif-sim/internal/eino/flows"
)

// SimulateCmd 执行一次场景模拟
func SimulateCmd(configPath *string) *cobra.Command {
	var (
		sequential bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <scenario>",
		Short: "Simulate a scenario and print both perspectives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, sim, _, err := setup(ctx, *configPath)
			if err != nil {
				return err
			}
			defer sim.Close()

			if sequential {
				parallel := false
				if _, err := sim.Simulator.UpdateConfig(flows.ConfigUpdate{EnableParallelGeneration: &parallel}); err != nil {
					return err
				}
			}

			result := sim.Simulator.Simulate(ctx, strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if result.Success {
				fmt.Fprintln(out, result.PresentationOutput)
			}

			if !result.Success {
				return errors.New(result.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Generate the two perspectives one after the other")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}
