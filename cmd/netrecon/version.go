package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the netrecon version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("netrecon", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
