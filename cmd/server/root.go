package main

import (
	"github.com/fadilmartias/cv-screening/internal/config"
	"github.com/spf13/cobra"
)

const app = "cv-screening"

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "cv-screening scores candidate CVs and project reports against a job and its rubrics",
	// serve is the default when no subcommand is given.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	env := config.Env()
	env.BindPFlag("LOG_DEBUG", rootCmd.PersistentFlags().Lookup("debug"))
	env.BindPFlag("LOG_JSON", rootCmd.PersistentFlags().Lookup("json"))
}
