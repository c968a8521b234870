package main

import (
	"encoding/json"

	"github.com/aretw0/workpad/internal/cli"
	"github.com/aretw0/workpad/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <id> <script>",
	Short: "Apply a command script to a workpad",
	Long: `Applies the commands of a YAML or JSON script to a workpad as a single batch.
The batch is persisted only if every command succeeds.

Example script:

  commands:
    - type: elementLayer
      payload: {pageId: page-1, elementId: element-1, movement: .inf}`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		wp, diff, err := cli.ApplyScript(cmd.Context(), a.manager, args[0], args[1])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"workpad": wp, "diff": diff})
		}
		cli.PrintMarkdown(cmd.OutOrStdout(), tui.NewRenderer(), tui.DiffMarkdown(diff))
		return nil
	},
}

func init() {
	applyCmd.Flags().Bool("json", false, "Print the resulting workpad and diff as JSON")
	rootCmd.AddCommand(applyCmd)
}
