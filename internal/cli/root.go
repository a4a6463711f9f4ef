// Package cli implements the settingsctl command line tool: small
// operator commands for inspecting and editing the settings files the
// engine manages.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "settingsctl",
	Short: "Inspect and edit managed settings files",
	Long: `settingsctl works against the settings files written by the
persistence engine: resolve which candidate path an instance would use,
read or atomically rewrite a section of a shared document, and manage
rotating backups.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initEnv wires SETTINGSCTL_* environment variables into flag defaults
// and quiets engine logging unless --verbose is set.
func initEnv() {
	viper.SetEnvPrefix("SETTINGSCTL")
	viper.AutomaticEnv()

	level := slog.LevelWarn
	if verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
