// Package cmd provides the command-line interface for lockstep.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lockstep",
	Short: "lockstep runs two simulations side by side.",
	Long: `lockstep runs two simulations side by side, for example a map ` +
		`before and after an edit. It paces both against the wall clock, ` +
		`measures the achieved speed and lets the operator pause, step, ` +
		`swap and change speed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env", nil,
		".env files to load before reading LOCKSTEP_* variables")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Exit handlers run before the process ends.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
