package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "transopt",
	Short: "Regional transport decarbonization model",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "case.yaml", "case document")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
