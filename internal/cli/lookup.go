package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLookupCommand(global *globalOptions) *cobra.Command {
	var (
		withTrace bool
		compact   bool
	)
	cmd := &cobra.Command{
		Use:   "lookup <path>",
		Short: "Evaluate a map path against the normalized maps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newResolver(cmd.Context(), global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r.ProcessMaps()

			value, trace, err := r.LookupMapWithTrace(args[0])
			if err != nil {
				return err
			}
			if withTrace {
				return writeJSON(cmd.OutOrStdout(), trace, compact)
			}
			if !trace.Found {
				return fmt.Errorf("path %q not found", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), value, compact)
		},
	}
	cmd.Flags().BoolVar(&withTrace, "trace", false, "Print the per-step trace instead of the value")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print compact JSON")
	return cmd
}
