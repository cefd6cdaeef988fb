package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	fixtures "github.com/goliatone/go-fixtures"
)

type resolveOptions struct {
	strict  bool
	compact bool
}

func newResolveCommand(global *globalOptions) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve [payload.json]",
		Short: "Resolve a JSON payload",
		Long: `Read a JSON payload from a file, or from stdin when the argument is omitted
or "-", resolve every marker it holds and print the result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			payload, err := readPayload(cmd.InOrStdin(), source)
			if err != nil {
				return err
			}

			r, err := newResolver(cmd.Context(), global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			resolved := r.Resolve(payload)
			if opts.strict {
				if err := fixtures.CheckResolved(resolved); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), resolved, opts.compact)
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when markers remain after resolution")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "Print compact JSON")
	return cmd
}

func readPayload(stdin io.Reader, source string) (any, error) {
	var (
		raw []byte
		err error
	)
	if source == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload %s: %w", displaySource(source), err)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", displaySource(source), err)
	}
	return payload, nil
}

func displaySource(source string) string {
	if source == "-" {
		return "stdin"
	}
	return source
}

func writeJSON(w io.Writer, value any, compact bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(value)
}
