package cmd

import (
	"fmt"
	"os"

	"ats-catalog/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir holds config.yml and .env.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ats-catalog",
	Short: "ATS job catalog service",
	Long: `ats-catalog crawls company careers sites hosted on applicant tracking systems
and keeps a catalog of their postings, recording what appeared, changed and closed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	// Errors reach a terminal, so log them in console format.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l.Error("command failed", zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding config.yml and .env")
}
