package app

import (
	"context"
	"fmt"
	"log"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/gateway/config"
	"accsetup/internal/gateway/handler"
	"accsetup/internal/gateway/server"
	"accsetup/internal/gateway/service/workspace"
	"accsetup/internal/llm"
)

type App struct {
	server   *server.Server
	provider llm.Provider
	stores   *gatewayStores
}

func New(args ...string) (*App, error) {
	cfg, err := config.Load(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Dependencies
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	provider, err := llm.New(context.Background(), llm.ProviderConfig{
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
	if cfg.LLM.APIKey == "" {
		log.Printf("llm: no API key for provider %s; generate and refine will fail until one is set", cfg.LLM.Provider)
	}
	stores, err := initStores(cfg)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}

	adv := advisor.New(advisor.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Language:    cfg.Advisor.Language,
		RaceMinutes: cfg.Advisor.RaceMinutes,
	}, provider)
	svc := workspace.New(workspace.Config{TTL: cfg.Session.TTL, Max: cfg.Session.Max}, adv, cat, stores.history, stores.artifact)
	h := handler.New(svc, cfg.Locale)

	// Routing & Server
	srv := server.New(cfg.Port, server.NewRouter(h, cfg.Env, cfg.CORSOrigins...))

	return &App{
		server:   srv,
		provider: provider,
		stores:   stores,
	}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	log.Printf("catalog: %s (%d cars, %d tracks)", path, len(cat.Cars), len(cat.Tracks))
	return cat, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.stores.close()
	_ = a.provider.Close()
	return err
}
