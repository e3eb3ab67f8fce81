package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	launchargs "github.com/goliatone/go-launchargs"
	"github.com/goliatone/go-launchargs/pkg/metrics"
	"github.com/goliatone/go-launchargs/pkg/zaplog"
)

type resolveFlags struct {
	set         []string
	deleteKeys  []string
	args        []string
	newInstance bool
	metrics     bool
}

func newResolveCmd(global *globalFlags) *cobra.Command {
	flags := &resolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the serialized launch arguments for one launch",
		Long: `Applies --set and --delete to the overlay, launches with the --arg values as
on-site arguments and prints the serialized arguments as JSON.

Example:
  launchargs resolve -c launchargs.yaml --set goo=gle! --delete app --arg hello='["wo","rld"]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, global, flags)
		},
	}
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "overlay entry key=value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.deleteKeys, "delete", nil, "overlay deletion for key (repeatable)")
	cmd.Flags().StringArrayVar(&flags.args, "arg", nil, "on-site argument key=value (repeatable)")
	cmd.Flags().BoolVar(&flags.newInstance, "new-instance", false, "request a fresh app instance")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "write resolution metrics to stderr in Prometheus text format")
	return cmd
}

func runResolve(cmd *cobra.Command, global *globalFlags, flags *resolveFlags) error {
	s, err := global.open()
	if err != nil {
		return err
	}
	defer s.close()

	patch, err := parseAssignments(flags.set)
	if err != nil {
		return fmt.Errorf("--set: %w", err)
	}
	for _, key := range flags.deleteKeys {
		patch[key] = launchargs.Delete
	}
	onSite, err := parseAssignments(flags.args)
	if err != nil {
		return fmt.Errorf("--arg: %w", err)
	}

	registry := prometheus.NewRegistry()
	logger := launchargs.MultiResolutionLogger(zaplog.New(s.logger), metrics.New(registry))

	invoker := launchargs.InvokerFunc(func(_ context.Context, spec launchargs.LaunchSpec) error {
		return writeJSON(cmd, spec.Serialized)
	})
	launcher, emitter, err := s.launcher(invoker, launchargs.WithLauncherLogger(logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if len(patch) > 0 {
		store := launchargs.Observe(launcher.AppLaunchArgs(), s.app, emitter)
		if err := store.Modify(ctx, patch); err != nil {
			return err
		}
	}
	if _, err := launcher.LaunchApp(ctx, launchargs.LaunchRequest{
		NewInstance: flags.newInstance,
		LaunchArgs:  onSite,
	}); err != nil {
		return err
	}

	if flags.metrics {
		return writeMetrics(cmd.ErrOrStderr(), registry)
	}
	return nil
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
