package main

import (
	"fmt"

	"github.com/aretw0/workpad/pkg/adapters/file"
	"github.com/aretw0/workpad/pkg/backup"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup <dir>",
	Short: "Copy every workpad into a directory of JSON files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := backup.Snapshot(cmd.Context(), a.backend.Store, file.New(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %d workpads to %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
