package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Fetch once, resolve the active event, and print the decision",
		Long: `resolve performs a single fetch-and-resolve cycle and prints the
resulting session snapshot. Useful as a deployment probe: it exercises the
provider connection, clock correction, and schedule resolution without
starting the periodic drivers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			sess, err := buildSession()
			if err != nil {
				return err
			}

			sess.Refresh(ctx)
			fmt.Println(sess.Snapshot())
			return nil
		},
	}
}
