package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const currentReleaseVersion = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "tutor [command]",
	Short: "tutor is a Tomy Tutor home computer emulator",
	Long:  "tutor is a Tomy Tutor home computer emulator",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires at least 1 argument")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Unknown command. Try `tutor help` for more information")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
