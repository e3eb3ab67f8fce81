package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	launchargs "github.com/goliatone/go-launchargs"
	"github.com/goliatone/go-launchargs/config"
	"github.com/goliatone/go-launchargs/pkg/activity"
	"github.com/goliatone/go-launchargs/pkg/zaplog"
	"github.com/goliatone/go-launchargs/rules"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	app        string
	platform   string
	logLevel   string
}

// session is the state built from flags and the config file before a
// subcommand runs.
type session struct {
	cfg      *config.Config
	app      string
	platform launchargs.Platform
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "launchargs",
		Short: "Resolve the launch arguments an app receives",
		Long: `launchargs merges baseline, overlay and on-site launch arguments the same
way the test harness does and prints the result.

Baseline arguments come from the config file. Overlay entries are given with
--set and --delete, on-site arguments with --arg.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.app, "app", "", "app whose baseline is used (defaults to the config app)")
	rootCmd.PersistentFlags().StringVar(&flags.platform, "platform", "", "android or ios (defaults to the config platform)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (defaults to the config level)")

	rootCmd.AddCommand(
		newResolveCmd(flags),
		newExplainCmd(flags),
		newReservedCmd(flags),
	)
	return rootCmd
}

func (f *globalFlags) open() (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.Parse(nil)
	}
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, app: cfg.App, platform: cfg.PlatformValue()}
	if f.app != "" {
		s.app = f.app
	}
	if f.platform != "" {
		s.platform = launchargs.ParsePlatform(f.platform)
		if s.platform == launchargs.PlatformUnknown {
			return nil, fmt.Errorf("unknown platform %q", f.platform)
		}
	}

	level := cfg.Logging.Level
	if f.logLevel != "" {
		level = f.logLevel
	}
	s.logger, err = zaplog.NewCLILogger(level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return s, nil
}

func (s *session) close() {
	if s != nil && s.logger != nil {
		_ = s.logger.Sync()
	}
}

// launcher builds a Launcher for the selected app. invoker may be nil when
// the caller never launches.
func (s *session) launcher(invoker launchargs.Invoker, opts ...launchargs.LauncherOption) (*launchargs.Launcher, *activity.Emitter, error) {
	baseline := launchargs.Args{}
	if s.app != "" {
		var err error
		baseline, err = s.cfg.Baseline(s.app, rules.Context{
			Platform: string(s.platform),
			App:      s.app,
			Env:      environ(),
		})
		if err != nil {
			return nil, nil, err
		}
	}
	if invoker == nil {
		invoker = launchargs.InvokerFunc(nil)
	}

	emitter := activity.NewEmitter(activity.Hooks{activity.HookFunc(s.logActivity)}, s.cfg.EmitterConfig())
	resolver := launchargs.NewResolver(launchargs.WithKeyFilter(launchargs.NewKeyFilter(s.cfg.ReservedKeys())))
	base := []launchargs.LauncherOption{
		launchargs.WithApp(s.app),
		launchargs.WithPlatform(s.platform),
		launchargs.WithBaseline(baseline),
		launchargs.WithResolver(resolver),
		launchargs.WithActivityEmitter(emitter),
	}
	launcher, err := launchargs.NewLauncher(invoker, append(base, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return launcher, emitter, nil
}

func (s *session) logActivity(_ context.Context, event activity.Event) error {
	s.logger.Debug("activity",
		zap.String("verb", event.Verb),
		zap.String("object_type", event.ObjectType),
		zap.String("object_id", event.ObjectID),
		zap.String("channel", event.Channel),
		zap.Any("metadata", event.Metadata),
	)
	return nil
}

func environ() map[string]string {
	env := map[string]string{}
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}
	return env
}

// parseAssignments turns k=v pairs into Args. Values that parse as JSON keep
// their JSON type; anything else is taken as a string.
func parseAssignments(pairs []string) (launchargs.Args, error) {
	out := launchargs.Args{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[key] = parseValue(raw)
	}
	return out, nil
}

func parseValue(raw string) any {
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil || value == nil || decoder.More() {
		return raw
	}
	return value
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
