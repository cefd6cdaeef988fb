package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	fixtures "github.com/goliatone/go-fixtures"
	"github.com/goliatone/go-fixtures/pkg/activity"
	"github.com/goliatone/go-fixtures/pkg/store"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	dataDir   string
	matcher   string
	sessionID string
	logLevel  string
	logFormat string
}

// NewRootCommand builds the fixtures command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:     "fixtures",
		Version: "dev",
		Short:   "Resolve fixture payloads against template and map definitions",
		Long: `fixtures expands template references, map references and data functions
in JSON payloads using definitions loaded from a data directory:

  <data>/templates/*.json|*.jsonc|*.yaml
  <data>/maps/*.json|*.jsonc|*.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.dataDir, "data", "d", ".", "Directory holding templates/ and maps/")
	flags.StringVar(&opts.matcher, "matcher", "expr", "Filter matcher engine: expr, cel or js")
	flags.StringVar(&opts.sessionID, "session", "", "Session identifier reported on activity events")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(newResolveCommand(opts))
	root.AddCommand(newLookupCommand(opts))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the fixtures CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cmd.Root().Version)
		},
	})
	return root
}

// SetVersion stamps v on root; empty values are ignored.
func SetVersion(root *cobra.Command, v string) {
	if v == "" {
		return
	}
	root.Version = v
	root.SetVersionTemplate("{{.Version}}\n")
}

// newResolver builds a resolver from the global flags and loads the data
// directory into it.
func newResolver(ctx context.Context, opts *globalOptions, stderr io.Writer) (*fixtures.Resolver, error) {
	logger := newLogger(opts.logLevel, opts.logFormat, stderr)

	matcher, err := newMatcher(opts.matcher)
	if err != nil {
		return nil, err
	}

	r := fixtures.New(
		fixtures.WithLogger(fixtures.SlogLogger(logger)),
		fixtures.WithMatcher(matcher),
		fixtures.WithSessionID(opts.sessionID),
		fixtures.WithActivityHooks(activity.Hooks{logHook(logger)}),
		fixtures.WithActivityChannel("cli"),
	)
	if err := store.Populate(ctx, store.NewDirStore(opts.dataDir), r); err != nil {
		return nil, err
	}
	logger.Debug("fixtures: definitions loaded",
		slog.String("data", opts.dataDir),
		slog.Int("templates", r.RawTemplates().Len()),
		slog.Int("maps", r.RawMaps().Len()),
	)
	return r, nil
}

func newMatcher(name string) (fixtures.Matcher, error) {
	switch name {
	case "", "expr":
		return fixtures.NewExprMatcher(), nil
	case "cel":
		return fixtures.NewCELMatcher(), nil
	case "js":
		matcher := fixtures.NewJSMatcher()
		if matcher == nil {
			return nil, fmt.Errorf("matcher %q requires a build with the js_eval tag", name)
		}
		return matcher, nil
	default:
		return nil, fmt.Errorf("unknown matcher %q", name)
	}
}

// logHook reports activity events at debug level.
func logHook(logger *slog.Logger) activity.ActivityHook {
	return activity.HookFunc(func(ctx context.Context, event activity.Event) error {
		logger.DebugContext(ctx, "fixtures: activity",
			slog.String("verb", event.Verb),
			slog.String("object_type", event.ObjectType),
			slog.String("object_id", event.ObjectID),
			slog.String("reference", event.Reference),
		)
		return nil
	})
}
