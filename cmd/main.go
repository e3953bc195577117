package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ratchet-tracker",
	Short: "A CLI for managing the Ratchet Tracker services",
	Long:  `Ratchet Tracker follows doubled equity positions and ratchets a volatility-sized exit threshold under each one.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
