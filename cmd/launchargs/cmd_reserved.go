package main

import (
	"fmt"

	"github.com/spf13/cobra"

	launchargs "github.com/goliatone/go-launchargs"
)

func newReservedCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reserved",
		Short: "List the reserved keys for the selected platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := global.open()
			if err != nil {
				return err
			}
			defer s.close()

			filter := launchargs.NewKeyFilter(s.cfg.ReservedKeys())
			for _, key := range filter.Reserved(s.platform) {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}
