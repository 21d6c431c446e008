package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the registrations table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.shutdown()

			fmt.Fprintf(cmd.OutOrStdout(), "registrations schema is up to date (%s)\n", a.cfg.DBDriver)
			return nil
		},
	}
}
