package main

import (
	"context"
	"fmt"

	"llm-evaluator/internal/config"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/infrastructure/logger"
	"llm-evaluator/internal/utils/functional"
	"llm-evaluator/internal/utils/platformerrors"
)

// DataInitializer seeds providers and models from the optional bootstrap
// YAML file before the server starts accepting traffic. Re-running against
// an already seeded database is a no-op.
type DataInitializer struct {
	ProviderService *model.ProviderService
	ModelService    *model.ModelService
}

func (d *DataInitializer) Install(ctx context.Context) error {
	cfg := config.GetGlobal()
	if cfg == nil || cfg.ProviderBootstrapFile == "" {
		return nil
	}

	bootstrap, err := config.LoadProviderBootstrapConfig(cfg.ProviderBootstrapFile)
	if err != nil {
		return err
	}

	for i := range bootstrap.Providers {
		entry := bootstrap.Providers[i]
		if err := d.bootstrapProvider(ctx, entry); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
				fmt.Sprintf("failed to bootstrap provider %q", entry.Name))
		}
	}
	return nil
}

func (d *DataInitializer) bootstrapProvider(ctx context.Context, entry config.ProviderBootstrapEntry) error {
	provider, err := d.ensureProvider(ctx, entry)
	if err != nil {
		return err
	}

	for _, m := range entry.Models {
		_, err := d.ModelService.CreateModel(ctx, model.CreateModelInput{
			ProviderPublicID: provider.PublicID,
			ModelID:          m.ModelID,
			DisplayName:      m.DisplayName,
			Reasoning:        m.Reasoning,
		})
		if err != nil {
			// already seeded on a previous run
			if platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
				continue
			}
			return err
		}
	}

	if !entry.SyncModels {
		return nil
	}

	added, err := d.ProviderService.SyncModels(ctx, provider.PublicID)
	if err != nil {
		return err
	}
	if added > 0 {
		log := logger.GetLogger()
		log.Info().Str("provider", entry.Name).Int("added", added).Msg("bootstrap model sync")
	}
	return nil
}

func (d *DataInitializer) ensureProvider(ctx context.Context, entry config.ProviderBootstrapEntry) (*model.Provider, error) {
	providers, err := d.ProviderService.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	if existing, ok := functional.Find(providers, func(p *model.Provider) bool {
		return p.Name == entry.Name
	}); ok {
		return existing, nil
	}
	return d.ProviderService.CreateProvider(ctx, model.CreateProviderInput{
		Name:    entry.Name,
		BaseURL: entry.BaseURL,
		APIKey:  entry.APIKey,
	})
}
