package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/workpad/internal/cli"
	"github.com/aretw0/workpad/internal/presentation/tui"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Print a workpad outline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		id := args[0]
		render := tui.NewRenderer()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			if a.backend.Watcher == nil {
				return errors.New("--watch needs the file store backend")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.WatchWorkpad(ctx, cmd.OutOrStdout(), render, a.backend.Watcher, id, a.manager.Load, a.logger)
		}

		wp, err := a.manager.Load(cmd.Context(), id)
		if err != nil {
			return err
		}
		if dump, _ := cmd.Flags().GetBool("dump"); dump {
			pp.ColoringEnabled = tui.IsTerminal()
			_, err := pp.Fprintln(cmd.OutOrStdout(), wp)
			return err
		}
		cli.PrintWorkpad(cmd.OutOrStdout(), render, wp, a.backend.UpdatedAt(cmd.Context(), id))
		return nil
	},
}

func init() {
	inspectCmd.Flags().Bool("dump", false, "Pretty-print the decoded Go value instead of the outline")
	inspectCmd.Flags().BoolP("watch", "w", false, "Re-print the outline when the workpad file changes")
	rootCmd.AddCommand(inspectCmd)
}
