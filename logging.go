package fixtures

import (
	"context"
	"log/slog"
	"time"
)

// Stage names the operation that produced a log event.
type Stage string

const (
	StageTemplates Stage = "templates"
	StageMaps      Stage = "maps"
	StageData      Stage = "data"
	StageLookup    Stage = "lookup"
)

// ResolutionEvent describes one resolution step worth reporting: a finished
// normalizer run, or a reference that could not be resolved.
type ResolutionEvent struct {
	Stage     Stage
	Kind      string
	Reference string
	Found     bool
	Entries   int
	Duration  time.Duration
	Err       error
}

// ResolverLogger records resolution events.
type ResolverLogger interface {
	LogResolution(ResolutionEvent)
}

// ResolverLoggerFunc adapts a function to ResolverLogger.
type ResolverLoggerFunc func(ResolutionEvent)

// LogResolution implements ResolverLogger.
func (f ResolverLoggerFunc) LogResolution(event ResolutionEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolverLogger struct{}

func (noopResolverLogger) LogResolution(ResolutionEvent) {}

// WithLogger attaches a logger to the resolver.
func WithLogger(logger ResolverLogger) Option {
	return func(cfg *resolverConfig) {
		if logger == nil {
			cfg.logger = noopResolverLogger{}
			return
		}
		cfg.logger = logger
	}
}

// SlogLogger reports events through logger. Normalizer runs log at debug,
// unresolved references at warn and errors at error level.
func SlogLogger(logger *slog.Logger) ResolverLogger {
	if logger == nil {
		return noopResolverLogger{}
	}
	return slogResolverLogger{logger: logger}
}

type slogResolverLogger struct {
	logger *slog.Logger
}

func (l slogResolverLogger) LogResolution(event ResolutionEvent) {
	attrs := []slog.Attr{
		slog.String("stage", string(event.Stage)),
	}
	if event.Kind != "" {
		attrs = append(attrs, slog.String("kind", event.Kind))
	}
	if event.Reference != "" {
		attrs = append(attrs, slog.String("reference", event.Reference))
	}
	if event.Entries > 0 {
		attrs = append(attrs, slog.Int("entries", event.Entries))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}

	ctx := context.Background()
	switch {
	case event.Err != nil:
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		l.logger.LogAttrs(ctx, slog.LevelError, "fixtures: resolution failed", attrs...)
	case event.Reference != "" && !event.Found:
		l.logger.LogAttrs(ctx, slog.LevelWarn, "fixtures: unresolved reference", attrs...)
	default:
		l.logger.LogAttrs(ctx, slog.LevelDebug, "fixtures: resolved", attrs...)
	}
}
