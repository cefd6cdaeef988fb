package fixtures

import "github.com/goliatone/go-fixtures/pkg/activity"

// WithActivityHooks reports normalizer runs and unresolved references to
// hooks. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	kept := make(activity.Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	return func(cfg *resolverConfig) {
		if len(kept) == 0 {
			cfg.activityHooks = nil
			return
		}
		cfg.activityHooks = kept
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *resolverConfig) {
		cfg.channel = channel
	}
}
