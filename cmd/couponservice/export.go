package main

import (
	"fmt"
	"os"

	"meal-coupon/export"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all registrations to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.shutdown()

			svc := a.service()
			regs, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteWorkbook(f, regs, svc.Menu()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d registrations to %s\n", len(regs), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "registrations.xlsx", "output file")
	return cmd
}
