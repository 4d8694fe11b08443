package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GetVersion returns the application version string.
func GetVersion() string {
	return version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the TaskTalk version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tasktalk %s\n", GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
