package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"skara-bot/internal/bot"
	"skara-bot/internal/classifier"
	"skara-bot/internal/config"
	"skara-bot/internal/dedup"
	"skara-bot/internal/genai"
	"skara-bot/internal/geo"
	"skara-bot/internal/router"
	"skara-bot/internal/whatsapp"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to WhatsApp and answer messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, log)
		},
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	log.Info().Msg("🚀 Starting SKARA...")

	reg, err := geo.LoadRegistry(cfg.FacilitiesFile)
	if err != nil {
		return err
	}
	log.Info().Int("facilities", reg.Len()).Msg("📍 Facility registry loaded")

	cls, err := classifier.New(cfg.APIURL, classifier.WithTimeout(cfg.ClassifyTimeout))
	if err != nil {
		return err
	}

	advisor, err := newAdvisor(cfg, log)
	if err != nil {
		return err
	}

	store, err := newDedupStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	wa, err := whatsapp.New(ctx, whatsapp.Config{SessionDB: cfg.SessionDB, Logger: log})
	if err != nil {
		return err
	}

	handler, err := bot.New(bot.Deps{
		Registry:   reg,
		Router:     router.New(router.Options{TopicFilter: cfg.TopicFilter}),
		Classifier: cls,
		Advisor:    advisor,
		Dedup:      store,
		TempDir:    cfg.TempDir,
		Logger:     log,
	}, wa)
	if err != nil {
		return err
	}

	err = wa.Run(ctx, handler.Handle)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info().Msg("👋 SKARA stopped")
	return err
}

// newAdvisor prefers the API generator, falls back to the browser generator,
// and returns a nil Advisor when neither is configured.
func newAdvisor(cfg config.Config, log zerolog.Logger) (bot.Advisor, error) {
	var gen genai.Generator
	switch {
	case cfg.HasAPIKey():
		g, err := genai.NewOpenAI(cfg.GeminiAPIKey,
			genai.WithBaseURL(cfg.GeminiBaseURL),
			genai.WithModel(cfg.GeminiModel),
		)
		if err != nil {
			return nil, err
		}
		log.Info().Str("model", g.Model()).Msg("💡 Generative answers via API")
		gen = g
	case cfg.HasBrowser():
		b, err := genai.NewBrowser(genai.BrowserConfig{
			ExecPath:   cfg.ChromiumPath,
			ProfileDir: cfg.BrowserProfileDir,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("profile", cfg.BrowserProfileDir).Msg("💡 Generative answers via browser")
		gen = b
	default:
		log.Warn().Msg("⚠️ GEMINI_API_KEY not set, AI answers disabled")
		return nil, nil
	}
	return genai.NewAdvisor(gen, cfg.GenerateTimeout, log), nil
}

func newDedupStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (dedup.Store, error) {
	if cfg.RedisURL == "" {
		return dedup.NewMemory(cfg.DedupTTL), nil
	}
	store, err := dedup.NewRedis(ctx, cfg.RedisURL, cfg.DedupTTL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("🗄️ Message dedup shared through redis")
	return store, nil
}
