package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"skara-bot/internal/genai"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Open a visible browser to sign in to Gemini for browser mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.HasBrowser() {
				return errors.New("CHROMIUM_PATH is not set")
			}

			browser, err := genai.NewBrowser(genai.BrowserConfig{
				ExecPath:   cfg.ChromiumPath,
				ProfileDir: cfg.BrowserProfileDir,
				Logger:     log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return browser.Login(ctx)
		},
	}
}
