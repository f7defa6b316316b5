package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/A1X6/saaschat/pkg/catalog"
	"github.com/A1X6/saaschat/pkg/chat"
	"github.com/A1X6/saaschat/pkg/config"
	"github.com/A1X6/saaschat/pkg/contextmgr"
	"github.com/A1X6/saaschat/pkg/httpapi"
	"github.com/A1X6/saaschat/pkg/models"
	"github.com/A1X6/saaschat/pkg/openrouter"
	"github.com/A1X6/saaschat/pkg/store"
	"github.com/A1X6/saaschat/pkg/tokenizer"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			st, err := store.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = st.Close() }()

			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			client := openrouter.New(cfg.OpenRouter)
			counter := tokenizer.New()

			var cache *contextmgr.SummaryCache
			if cfg.SummaryCache.Enabled {
				cache, err = contextmgr.NewSummaryCache(cfg.DBPath, cfg.SummaryCache.TTL)
				if err != nil {
					return fmt.Errorf("init summary cache: %w", err)
				}
				defer func() { _ = cache.Close() }()
			}

			// Summarization reuses the completion client with the summary
			// budget standing in for the window, so the same output clamp
			// applies. Summarization usage is not charged to the user.
			summarize := func(ctx context.Context, msgs []models.Message, modelID string, maxTokens int, temperature float64) (string, error) {
				completion, err := client.Complete(ctx, msgs, modelID, maxTokens, temperature)
				if err != nil {
					return "", err
				}
				return completion.Text, nil
			}

			optimizer := contextmgr.New(counter, summarize, cache)
			svc := chat.New(cat, client, optimizer, st, cfg.Chat.SystemPrompt, cfg.Chat.Temperature)
			srv := httpapi.New(cfg.Listen, svc, cat, st)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("starting saaschat with config: %s", configPath)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "saaschat.yaml", "path to config file")
	return cmd
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.ModelsFile != "" {
		cat, err := catalog.LoadFile(cfg.ModelsFile)
		if err != nil {
			return nil, fmt.Errorf("load models: %w", err)
		}
		return cat, nil
	}
	return catalog.Defaults(), nil
}
