package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"telegram-pinmsg-bot/internal/config"
	"telegram-pinmsg-bot/internal/infra/transport"
)

// hookPathCmd prints the webhook route, for configuring a reverse proxy.
var hookPathCmd = &cobra.Command{
	Use:   "hookpath",
	Short: "Print the webhook path derived from the bot token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(cfgPath, devMode)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if !cfg.Webhook.Enable {
			return errors.New("webhook mode is disabled; updates are polled")
		}
		path := transport.DeriveHookPath(cfg.Webhook.Path, cfg.Bot.Token)
		fmt.Fprintln(cmd.OutOrStdout(), path)
		fmt.Fprintln(cmd.OutOrStdout(), transport.WebhookURL(cfg.Webhook.URLPrefix, path))
		return nil
	},
}
