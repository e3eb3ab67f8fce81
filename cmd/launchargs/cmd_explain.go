package main

import (
	"github.com/spf13/cobra"

	launchargs "github.com/goliatone/go-launchargs"
)

func newExplainCmd(global *globalFlags) *cobra.Command {
	var (
		set        []string
		deleteKeys []string
		args       []string
	)
	cmd := &cobra.Command{
		Use:   "explain KEY...",
		Short: "Show which layer decides each key",
		Long: `Prints, for every KEY, the value each layer holds and the layer that wins,
including whether the key is reserved on the selected platform.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, keys []string) error {
			s, err := global.open()
			if err != nil {
				return err
			}
			defer s.close()

			launcher, _, err := s.launcher(nil)
			if err != nil {
				return err
			}
			patch, err := parseAssignments(set)
			if err != nil {
				return err
			}
			for _, key := range deleteKeys {
				patch[key] = launchargs.Delete
			}
			if err := launcher.AppLaunchArgs().Modify(patch); err != nil {
				return err
			}
			onSite, err := parseAssignments(args)
			if err != nil {
				return err
			}

			traces := make([]launchargs.Trace, 0, len(keys))
			for _, key := range keys {
				trace, err := launcher.Explain(key, onSite)
				if err != nil {
					return err
				}
				traces = append(traces, trace)
			}
			return writeJSON(cmd, traces)
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "overlay entry key=value (repeatable)")
	cmd.Flags().StringArrayVar(&deleteKeys, "delete", nil, "overlay deletion for key (repeatable)")
	cmd.Flags().StringArrayVar(&args, "arg", nil, "on-site argument key=value (repeatable)")
	return cmd
}
