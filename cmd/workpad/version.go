package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/workpad"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of workpad",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("workpad version %s\n", strings.TrimSpace(workpad.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
