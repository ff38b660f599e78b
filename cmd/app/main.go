// File: cmd/app/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

var (
	cfgPath string
	devMode bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:           "pinmsg-bot",
	Short:         "Telegram bot that keeps one pinned message per group",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.Version = version + " (" + commit + ")"
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "enable developer mode (console logs, unredacted secrets)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log outbound requests instead of sending them")

	rootCmd.AddCommand(hookPathCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
