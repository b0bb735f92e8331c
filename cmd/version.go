package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version number of trackkeeper",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("trackkeeper v0.1.0")
		fmt.Println("Personal Spotify listening-history collector")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
