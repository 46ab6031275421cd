package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var errDropNotConfirmed = errors.New("refusing to drop without --yes")

var dropConfirmed bool

var dropCmd = &cobra.Command{
	Use:   "drop-database",
	Short: "Drop the entire backing database (DEV/USER/TEST instances only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !dropConfirmed {
			return errDropNotConfirmed
		}
		return ds.DropDatabase(context.Background())
	},
}

func init() {
	dropCmd.Flags().BoolVar(&dropConfirmed, "yes", false, "confirm the drop")
}
