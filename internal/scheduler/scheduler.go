package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

type ConfigRepository interface {
	ListActive(ctx context.Context) ([]dto.HRSystemConfig, error)
}

type SyncOrchestrator interface {
	PerformSync(ctx context.Context, configID string, entities []dto.EntityType) (*dto.SyncResult, error)
}

// Scheduler периодически прогоняет синхронизацию по всем активным
// интеграциям. Конфигурации перечитываются на каждом тике: созданная
// между тиками интеграция попадает в следующий прогон без рестарта.
type Scheduler struct {
	cron         *cron.Cron
	schedule     string
	configs      ConfigRepository
	orchestrator SyncOrchestrator
	log          zerolog.Logger
}

func New(schedule string, configs ConfigRepository, orchestrator SyncOrchestrator, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		schedule:     schedule,
		configs:      configs,
		orchestrator: orchestrator,
		log:          log.With().Str("component", "SyncScheduler").Logger(),
	}
}

// Start блокируется до отмены ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.schedule == "" {
		s.log.Info().Msg("schedule is empty, periodic sync disabled")
		<-ctx.Done()
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.log.Info().Str("schedule", s.schedule).Msg("periodic sync enabled")
	s.cron.Start()

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	configs, err := s.configs.ListActive(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list active integrations")
		return
	}

	for _, cfg := range configs {
		if ctx.Err() != nil {
			return
		}

		result, err := s.orchestrator.PerformSync(ctx, cfg.ID, nil)
		if err != nil {
			s.log.Error().
				Err(err).
				Str("config_id", cfg.ID).
				Str("system_type", string(cfg.SystemType)).
				Msg("scheduled sync failed to start")
			continue
		}

		s.log.Info().
			Str("config_id", cfg.ID).
			Str("system_type", string(cfg.SystemType)).
			Bool("success", result.Success).
			Msg("scheduled sync finished")
	}
}
