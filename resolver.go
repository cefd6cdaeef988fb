package fixtures

import (
	"context"

	"github.com/goliatone/go-fixtures/layering"
	"github.com/goliatone/go-fixtures/pkg/activity"
	"github.com/google/uuid"
)

// Resolver owns one resolution context: the raw template and map stores filled
// by a loader, the normalized stores derived from them, and the processing
// state of each kind.
//
// A Resolver is not safe for concurrent use. Scenario boundaries are explicit:
// callers clear the raw stores and reset processing before normalizing again.
type Resolver struct {
	cfg       resolverConfig
	sessionID string
	logger    ResolverLogger
	matcher   Matcher
	paths     PathCache
	pathScope string
	functions *FunctionRegistry
	emitter   *activity.Emitter

	rawTemplates  Store
	templates     Store
	templateState ProcessingState

	rawMaps  Store
	maps     Store
	mapState ProcessingState
}

// New constructs a Resolver with empty stores.
func New(opts ...Option) *Resolver {
	cfg := applyOptions(opts)

	r := &Resolver{
		cfg:          cfg,
		sessionID:    cfg.sessionID,
		logger:       cfg.logger,
		matcher:      cfg.matcher,
		paths:        cfg.pathCache,
		functions:    buildFunctionRegistry(cfg),
		rawTemplates: Store{},
		templates:    Store{},
		rawMaps:      Store{},
		maps:         Store{},
	}
	if r.sessionID == "" {
		r.sessionID = uuid.NewString()
	}
	if r.logger == nil {
		r.logger = noopResolverLogger{}
	}
	if r.matcher == nil {
		var exprOpts []ExprMatcherOption
		if cfg.programCache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
		}
		r.matcher = NewExprMatcher(exprOpts...)
	}
	if r.paths == nil {
		r.paths = NewMemoryCache().Paths()
	}
	r.pathScope = pathCacheScope(r.matcher)
	r.emitter = activity.NewEmitter(cfg.activityHooks, activity.Config{
		Enabled: true,
		Channel: cfg.channel,
	})
	return r
}

// SessionID identifies the resolver on activity events.
func (r *Resolver) SessionID() string {
	return r.sessionID
}

// Functions returns the registry used for data function markers.
func (r *Resolver) Functions() *FunctionRegistry {
	return r.functions
}

// AddTemplate stores one raw template definition, replacing any previous
// definition with the same name.
func (r *Resolver) AddTemplate(name string, value any) {
	r.rawTemplates[name] = value
}

// AddTemplates merges many raw template definitions into the raw store.
func (r *Resolver) AddTemplates(definitions map[string]any) {
	for name, value := range definitions {
		r.rawTemplates[name] = value
	}
}

// ClearTemplates empties the raw template store.
func (r *Resolver) ClearTemplates() {
	r.rawTemplates = Store{}
}

// AddMap stores one raw map definition.
func (r *Resolver) AddMap(name string, value any) {
	r.rawMaps[name] = value
}

// AddMaps merges many raw map definitions into the raw store.
func (r *Resolver) AddMaps(definitions map[string]any) {
	for name, value := range definitions {
		r.rawMaps[name] = value
	}
}

// ClearMaps empties the raw map store.
func (r *Resolver) ClearMaps() {
	r.rawMaps = Store{}
}

// ResetProcessing clears both processing states so the next normalizer calls
// run again.
func (r *Resolver) ResetProcessing() {
	r.templateState = ProcessingState{}
	r.mapState = ProcessingState{}
}

// Reset starts a new scenario: both raw stores are emptied and both
// processing states cleared. Normalized stores are replaced on the next run.
func (r *Resolver) Reset() {
	r.ClearTemplates()
	r.ClearMaps()
	r.ResetProcessing()
}

// RawTemplates returns the live raw template store.
func (r *Resolver) RawTemplates() Store {
	return r.rawTemplates
}

// RawMaps returns the live raw map store.
func (r *Resolver) RawMaps() Store {
	return r.rawMaps
}

// Templates returns the live normalized template store. Callers read it; only
// ProcessTemplates replaces it.
func (r *Resolver) Templates() Store {
	return r.templates
}

// Maps returns the live normalized map store.
func (r *Resolver) Maps() Store {
	return r.maps
}

// TemplateState reports the template processing state.
func (r *Resolver) TemplateState() ProcessingState {
	return r.templateState
}

// MapState reports the map processing state.
func (r *Resolver) MapState() ProcessingState {
	return r.mapState
}

// Resolve normalizes both stores when needed and resolves value.
func (r *Resolver) Resolve(value any) any {
	r.ProcessMaps()
	r.ProcessTemplates()
	return r.ProcessData(value)
}

// LookupMap evaluates path against the normalized map store. The result is a
// copy; a malformed path is reported as not found.
func (r *Resolver) LookupMap(path string) (any, bool) {
	value, ok := r.lookupNormalizedMap(path, nil)
	if !ok {
		return nil, false
	}
	return layering.Clone(value), true
}

func (r *Resolver) compilePath(raw string) (*Path, error) {
	key := r.pathScope + "\x00" + raw
	if path, ok := r.paths.Get(key); ok && path != nil {
		return path, nil
	}
	path, err := CompilePath(raw, r.matcher)
	if err != nil {
		return nil, err
	}
	r.paths.Set(key, path)
	return path, nil
}

// lookupNormalizedMap resolves raw against the normalized map store. active
// guards chained references against revisiting a path.
func (r *Resolver) lookupNormalizedMap(raw string, active map[string]bool) (any, bool) {
	if active[raw] {
		return nil, false
	}
	path, err := r.compilePath(raw)
	if err != nil {
		r.logger.LogResolution(ResolutionEvent{Stage: StageLookup, Kind: nodeMapRef.String(), Reference: raw, Err: err})
		return nil, false
	}
	if active == nil {
		active = map[string]bool{}
	}
	active[raw] = true
	defer delete(active, raw)

	value, ok, err := path.evaluate(r.maps, func(ref string) (any, bool) {
		return r.lookupNormalizedMap(ref, active)
	}, nil)
	if err != nil {
		r.logger.LogResolution(ResolutionEvent{Stage: StageLookup, Kind: nodeMapRef.String(), Reference: raw, Found: ok, Err: err})
	}
	return value, ok
}

func (r *Resolver) reportUnresolved(stage Stage, kind nodeKind, ref string) {
	r.logger.LogResolution(ResolutionEvent{Stage: stage, Kind: kind.String(), Reference: ref})
	r.emit(activity.BuildUnresolvedEvent(activity.ResolutionInput{
		SessionID: r.sessionID,
		Kind:      string(stage),
		Reference: ref,
		Metadata:  map[string]any{"marker": kind.String()},
	}))
}

func (r *Resolver) emit(event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if err := r.emitter.Emit(context.Background(), event); err != nil {
		r.logger.LogResolution(ResolutionEvent{Stage: Stage(event.ObjectType), Reference: event.Reference, Found: true, Err: err})
	}
}
