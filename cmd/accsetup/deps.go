package main

import (
	"context"
	"fmt"
	"log"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/gateway/config"
	"accsetup/internal/llm"
)

// deps is what ask and mcp need: the advisor over a live provider, and
// the option lists.
type deps struct {
	cfg      *config.Config
	cat      *catalog.Catalog
	provider llm.Provider
	advisor  *advisor.Client
}

func loadDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	provider, err := llm.New(ctx, llm.ProviderConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		RPS:      cfg.LLM.RPS,
		Burst:    cfg.LLM.Burst,
		Retries:  cfg.LLM.Retries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init llm provider: %w", err)
	}
	adv := advisor.New(advisor.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Language:    cfg.Advisor.Language,
		RaceMinutes: cfg.Advisor.RaceMinutes,
	}, provider)
	return &deps{cfg: cfg, cat: cat, provider: provider, advisor: adv}, nil
}

func (d *deps) close() {
	if err := d.provider.Close(); err != nil {
		log.Printf("llm close: %v", err)
	}
}

// lang picks the flag value over the configured locale.
func (d *deps) lang(flagLang string) string {
	if flagLang != "" {
		return flagLang
	}
	return d.cfg.Locale
}
