package main

import (
	"fmt"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create an empty workpad",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		pageIDs, _ := cmd.Flags().GetStringSlice("page")
		name, _ := cmd.Flags().GetString("name")

		pages := make([]domain.Page, len(pageIDs))
		for i, id := range pageIDs {
			pages[i] = domain.NewPage(id)
		}
		wp := domain.NewWorkpad(args[0], pages...)
		wp.Name = name

		if err := a.manager.Create(cmd.Context(), wp); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d pages)\n", wp.ID, len(wp.Pages))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored workpads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.manager.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workpad",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.manager.Delete(cmd.Context(), args[0])
	},
}

func init() {
	createCmd.Flags().StringSlice("page", []string{"page-1"}, "Page IDs to create")
	createCmd.Flags().String("name", "", "Display name")
	rootCmd.AddCommand(createCmd, listCmd, deleteCmd)
}
