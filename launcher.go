package launchargs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-launchargs/pkg/activity"
	"github.com/google/uuid"
)

// ErrInvokerRequired indicates NewLauncher was called without an Invoker.
var ErrInvokerRequired = errors.New("launchargs: invoker is required")

// LaunchSpec is what the Invoker receives for a single launch. Args holds the
// resolved values and Serialized the same entries in launch string form.
type LaunchSpec struct {
	ID          string
	App         string
	Platform    Platform
	NewInstance bool
	Args        Args
	Serialized  map[string]string
}

// Invoker performs the actual app launch.
type Invoker interface {
	Launch(ctx context.Context, spec LaunchSpec) error
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, spec LaunchSpec) error

// Launch implements Invoker.
func (f InvokerFunc) Launch(ctx context.Context, spec LaunchSpec) error {
	if f == nil {
		return nil
	}
	return f(ctx, spec)
}

// LaunchRequest carries the options of one launch call. LaunchArgs, when
// set, override every other layer for this launch only.
type LaunchRequest struct {
	NewInstance bool
	LaunchArgs  Args
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithPlatform sets the platform used for reserved key filtering.
func WithPlatform(platform Platform) LauncherOption {
	return func(l *Launcher) {
		l.platform = platform
	}
}

// WithApp names the app being launched. The name is informational.
func WithApp(name string) LauncherOption {
	return func(l *Launcher) {
		l.app = name
	}
}

// WithBaseline sets the preconfigured launch arguments. The map is copied.
func WithBaseline(baseline Args) LauncherOption {
	return func(l *Launcher) {
		l.baseline = baseline
	}
}

// WithStore shares an existing overlay store with the launcher.
func WithStore(store *Store) LauncherOption {
	return func(l *Launcher) {
		if store != nil {
			l.store = store
		}
	}
}

// WithResolver replaces the default resolver.
func WithResolver(resolver *Resolver) LauncherOption {
	return func(l *Launcher) {
		if resolver != nil {
			l.resolver = resolver
		}
	}
}

// WithActivityEmitter emits an app.launched event for every launch.
func WithActivityEmitter(emitter *activity.Emitter) LauncherOption {
	return func(l *Launcher) {
		l.emitter = emitter
	}
}

// WithLauncherLogger attaches a resolution logger.
func WithLauncherLogger(logger ResolutionLogger) LauncherOption {
	return func(l *Launcher) {
		if logger == nil {
			l.logger = noopResolutionLogger{}
			return
		}
		l.logger = logger
	}
}

// Launcher composes baseline, overlay and on-site arguments for each launch
// and hands the result to an Invoker.
type Launcher struct {
	invoker  Invoker
	platform Platform
	app      string
	baseline Args
	store    *Store
	resolver *Resolver
	emitter  *activity.Emitter
	logger   ResolutionLogger
}

// NewLauncher validates the baseline and builds a Launcher around invoker.
func NewLauncher(invoker Invoker, opts ...LauncherOption) (*Launcher, error) {
	if invoker == nil {
		return nil, ErrInvokerRequired
	}
	l := &Launcher{invoker: invoker}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	baseline, err := NormalizeArgs(l.baseline, false)
	if err != nil {
		return nil, fmt.Errorf("launchargs: baseline: %w", err)
	}
	l.baseline = baseline
	if l.store == nil {
		l.store = NewStore()
	}
	if l.resolver == nil {
		l.resolver = NewResolver()
	}
	if l.logger == nil {
		l.logger = noopResolutionLogger{}
	}
	return l, nil
}

// AppLaunchArgs returns the overlay store shared by every launch.
func (l *Launcher) AppLaunchArgs() *Store {
	return l.store
}

// Baseline returns a copy of the preconfigured launch arguments.
func (l *Launcher) Baseline() Args {
	return l.baseline.Clone()
}

// Platform returns the platform launches are resolved for.
func (l *Launcher) Platform() Platform {
	return l.platform
}

// Resolver returns the resolver used for every launch.
func (l *Launcher) Resolver() *Resolver {
	return l.resolver
}

// Preview resolves the arguments a launch with onSite would receive without
// invoking anything.
func (l *Launcher) Preview(onSite Args) (Resolution, error) {
	normalized, err := NormalizeArgs(onSite, false)
	if err != nil {
		return Resolution{}, err
	}
	return l.resolver.ResolveDetailed(l.platform, l.baseline, l.store.Get(), normalized), nil
}

// Explain traces how key would resolve for a launch with onSite.
func (l *Launcher) Explain(key string, onSite Args) (Trace, error) {
	normalized, err := NormalizeArgs(onSite, false)
	if err != nil {
		return Trace{}, err
	}
	_, _, trace := l.resolver.ResolveWithTrace(l.platform, l.baseline, l.store.Get(), normalized, key)
	return trace, nil
}

// LaunchApp resolves the launch arguments for req and invokes the launch.
// The returned spec is the one handed to the Invoker.
func (l *Launcher) LaunchApp(ctx context.Context, req LaunchRequest) (LaunchSpec, error) {
	start := time.Now()
	spec := LaunchSpec{
		ID:          uuid.NewString(),
		App:         l.app,
		Platform:    l.platform,
		NewInstance: req.NewInstance,
	}
	event := ResolutionLogEvent{
		LaunchID:    spec.ID,
		App:         l.app,
		Platform:    l.platform,
		NewInstance: req.NewInstance,
	}

	resolution, err := l.Preview(req.LaunchArgs)
	if err == nil {
		spec.Args = resolution.Args
		spec.Serialized, err = SerializeArgs(resolution.Args)
	}
	if err != nil {
		event.Err = err
		event.Duration = time.Since(start)
		l.logger.LogResolution(event)
		return LaunchSpec{}, err
	}

	event.Keys = resolution.Args.Keys()
	event.Filtered = resolution.Filtered
	event.Deleted = resolution.Deleted

	if err := l.invoker.Launch(ctx, spec); err != nil {
		event.Err = fmt.Errorf("launchargs: launch %q: %w", l.app, err)
		event.Duration = time.Since(start)
		l.logger.LogResolution(event)
		return LaunchSpec{}, event.Err
	}
	event.Duration = time.Since(start)
	l.logger.LogResolution(event)

	if l.emitter.Enabled() {
		if err := l.emitter.Emit(ctx, activity.BuildAppLaunchedEvent(activity.ArgsEventInput{
			App:      l.app,
			Platform: l.platform.String(),
			LaunchID: spec.ID,
			Keys:     event.Keys,
			Deleted:  event.Deleted,
			Filtered: event.Filtered,
		})); err != nil {
			return spec, fmt.Errorf("launchargs: activity: %w", err)
		}
	}
	return spec, nil
}
