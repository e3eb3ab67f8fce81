// Package config loads launch argument configuration from YAML: the apps,
// their baseline launch arguments, conditional baseline blocks and the
// reserved key sets per platform.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	launchargs "github.com/goliatone/go-launchargs"
	"github.com/goliatone/go-launchargs/internal/hydrate"
	"github.com/goliatone/go-launchargs/layering"
	"github.com/goliatone/go-launchargs/pkg/activity"
	"github.com/goliatone/go-launchargs/rules"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")
	// ErrUnknownApp indicates a lookup for an app that is not configured.
	ErrUnknownApp = errors.New("config: unknown app")
)

// Default values applied to omitted settings.
const (
	DefaultEngine   = rules.EngineExpr
	DefaultLogLevel = "info"
)

// Config is the decoded configuration file.
type Config struct {
	Platform string               `json:"platform"`
	App      string               `json:"app"`
	Rules    RulesConfig          `json:"rules"`
	Reserved map[string][]string  `json:"reservedKeys"`
	Apps     map[string]AppConfig `json:"apps"`
	Logging  LoggingConfig        `json:"logging"`
	Activity ActivityConfig       `json:"activity"`
}

// RulesConfig selects the engine evaluating conditional blocks.
type RulesConfig struct {
	Engine string `json:"engine"`
}

// AppConfig holds the baseline launch arguments for one app.
type AppConfig struct {
	LaunchArgs  map[string]any    `json:"launchArgs"`
	Conditional []ConditionalArgs `json:"conditional"`
}

// ConditionalArgs are merged over the baseline when When evaluates to true.
type ConditionalArgs struct {
	When       string         `json:"when"`
	LaunchArgs map[string]any `json:"launchArgs"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	Level string `json:"level"`
}

// ActivityConfig mirrors activity.Config.
type ActivityConfig struct {
	Enabled bool   `json:"enabled"`
	Channel string `json:"channel"`
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return parse(hydrate.Context{Source: path}, data)
}

// Parse decodes a YAML document. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	return parse(hydrate.Context{}, data)
}

func parse(ctx hydrate.Context, data []byte) (*Config, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	decoder := hydrate.NewDecoder[Config](
		hydrate.WithUseNumber[Config](),
		hydrate.WithDisallowUnknownFields[Config](),
		hydrate.WithPostHook[Config](applyDefaults),
		hydrate.WithPostHook[Config](func(_ hydrate.Context, cfg *Config) error {
			return cfg.Validate()
		}),
	)
	cfg, err := decoder.Decode(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(_ hydrate.Context, cfg *Config) error {
	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	cfg.Rules.Engine = strings.ToLower(strings.TrimSpace(cfg.Rules.Engine))
	if cfg.Rules.Engine == "" {
		cfg.Rules.Engine = DefaultEngine
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Apps == nil {
		cfg.Apps = map[string]AppConfig{}
	}
	return nil
}

// Validate reports every problem found in c joined into one error.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Platform != "" && launchargs.ParsePlatform(c.Platform) == launchargs.PlatformUnknown {
		invalid("platform %q is not android or ios", c.Platform)
	}
	switch c.Rules.Engine {
	case "", rules.EngineExpr, rules.EngineCEL:
	default:
		invalid("rules.engine %q is not expr or cel", c.Rules.Engine)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		invalid("logging.level %q is not debug, info, warn or error", c.Logging.Level)
	}
	for _, name := range sortedNames(c.Reserved) {
		if launchargs.ParsePlatform(name) == launchargs.PlatformUnknown {
			invalid("reservedKeys: unknown platform %q", name)
		}
	}
	if c.App != "" {
		if _, ok := c.Apps[c.App]; !ok {
			invalid("app %q is not listed under apps", c.App)
		}
	}
	for _, name := range c.AppNames() {
		app := c.Apps[name]
		if _, err := launchargs.NormalizeArgs(app.LaunchArgs, false); err != nil {
			invalid("apps.%s.launchArgs: %v", name, err)
		}
		for i, block := range app.Conditional {
			if strings.TrimSpace(block.When) == "" {
				invalid("apps.%s.conditional[%d]: when is required", name, i)
			}
			if _, err := launchargs.NormalizeArgs(block.LaunchArgs, false); err != nil {
				invalid("apps.%s.conditional[%d].launchArgs: %v", name, i, err)
			}
		}
	}
	return errors.Join(errs...)
}

// PlatformValue returns the configured platform.
func (c *Config) PlatformValue() launchargs.Platform {
	return launchargs.ParsePlatform(c.Platform)
}

// AppNames returns the configured app names sorted.
func (c *Config) AppNames() []string {
	return sortedNames(c.Apps)
}

// ReservedKeys returns the default reserved sets with every platform listed
// in the file replaced by the file's set.
func (c *Config) ReservedKeys() launchargs.ReservedKeys {
	override := launchargs.ReservedKeys{}
	for name, keys := range c.Reserved {
		override[launchargs.ParsePlatform(name)] = keys
	}
	return launchargs.DefaultReservedKeys().Merge(override)
}

// EmitterConfig converts the activity section for activity.NewEmitter.
func (c *Config) EmitterConfig() activity.Config {
	return activity.Config{Enabled: c.Activity.Enabled, Channel: c.Activity.Channel}
}

// Evaluator builds the rule evaluator selected by rules.engine.
func (c *Config) Evaluator(cache rules.ProgramCache) (rules.Evaluator, error) {
	return rules.NewEvaluator(c.Rules.Engine, cache)
}

// Baseline returns the baseline launch arguments for app. Conditional blocks
// are evaluated in declaration order and each matching block is merged over
// the result so far, key by key. ctx.App and ctx.Platform default to the app
// name and the configured platform.
func (c *Config) Baseline(app string, ctx rules.Context) (launchargs.Args, error) {
	return c.BaselineWith(nil, app, ctx)
}

// BaselineWith behaves like Baseline using evaluator, or the configured
// engine when evaluator is nil.
func (c *Config) BaselineWith(evaluator rules.Evaluator, app string, ctx rules.Context) (launchargs.Args, error) {
	appCfg, ok := c.Apps[app]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApp, app)
	}
	if ctx.App == "" {
		ctx.App = app
	}
	if ctx.Platform == "" {
		ctx.Platform = c.Platform
	}

	baseline, err := launchargs.NormalizeArgs(appCfg.LaunchArgs, false)
	if err != nil {
		return nil, fmt.Errorf("config: apps.%s.launchArgs: %w", app, err)
	}
	if len(appCfg.Conditional) == 0 {
		return baseline, nil
	}
	if evaluator == nil {
		if evaluator, err = c.Evaluator(nil); err != nil {
			return nil, err
		}
	}
	for i, block := range appCfg.Conditional {
		matched, err := evaluator.Evaluate(ctx, block.When)
		if err != nil {
			return nil, fmt.Errorf("config: apps.%s.conditional[%d]: %w", app, i, err)
		}
		if !matched {
			continue
		}
		args, err := launchargs.NormalizeArgs(block.LaunchArgs, false)
		if err != nil {
			return nil, fmt.Errorf("config: apps.%s.conditional[%d].launchArgs: %w", app, i, err)
		}
		baseline = layering.MergeLayers(nil, args, baseline)
	}
	return baseline, nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
