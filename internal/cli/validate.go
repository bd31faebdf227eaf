package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ValidateCmd 只做输入校验
func ValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario>",
		Short: "Check whether a scenario would be accepted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, sim, _, err := setup(ctx, *configPath)
			if err != nil {
				return err
			}
			defer sim.Close()

			res := sim.Simulator.Validate(ctx, strings.Join(args, " "))
			if !res.IsValid {
				return errors.New(res.ErrorMessage)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", res.SanitizedInput)
			return nil
		},
	}
}
