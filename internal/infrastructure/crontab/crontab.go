package crontab

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mileusna/crontab"

	"llm-evaluator/internal/config"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/infrastructure/logger"
	"llm-evaluator/internal/infrastructure/metrics"
	"llm-evaluator/internal/utils/platformerrors"
)

const (
	DefaultModelSyncInterval = 60               // in minutes
	CronJobTimeout           = 10 * time.Minute // timeout for each cron job execution
	maxConcurrentSyncs       = 10
)

// Crontab runs the periodic provider model sync. Every registered provider
// is refreshed from its /models listing; manual model edits survive a sync.
type Crontab struct {
	ctab            *crontab.Crontab
	providerService *model.ProviderService
}

func NewCrontab(providerService *model.ProviderService) *Crontab {
	return &Crontab{
		ctab:            crontab.New(),
		providerService: providerService,
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	// execute once on server start
	c.syncAllProviders(ctx)

	cfg := config.GetGlobal()
	if cfg != nil && cfg.ModelSyncEnabled {
		syncInterval := cfg.ModelSyncIntervalMinutes
		if syncInterval <= 0 {
			syncInterval = DefaultModelSyncInterval
		}

		cronExpr := fmt.Sprintf("*/%d * * * *", syncInterval)
		if err := c.ctab.AddJob(cronExpr, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			c.syncAllProviders(jobCtx)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add model sync job")
		}
		log.Info().Msgf("Model sync scheduled: every %d minute(s)", syncInterval)
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) syncAllProviders(ctx context.Context) {
	log := logger.GetLogger()
	providers, err := c.providerService.ListProviders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list providers for sync")
		return
	}
	if len(providers) == 0 {
		return
	}

	sem := make(chan struct{}, maxConcurrentSyncs)
	var wg sync.WaitGroup

	for _, provider := range providers {
		wg.Add(1)
		go func(p *model.Provider) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			c.syncProvider(ctx, p)
		}(provider)
	}
	wg.Wait()
}

func (c *Crontab) syncProvider(ctx context.Context, provider *model.Provider) {
	log := logger.GetLogger()

	added, err := c.providerService.SyncModels(ctx, provider.PublicID)
	if err != nil {
		metrics.RecordModelSync(provider.Name, "error")
		log.Error().Err(err).Str("provider", provider.Name).Msg("Failed to sync provider models")
		return
	}
	metrics.RecordModelSync(provider.Name, "ok")
	if added > 0 {
		log.Info().Str("provider", provider.Name).Int("added", added).Msg("Synced new models")
	}
}
