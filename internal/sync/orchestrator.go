package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

type ConfigRepository interface {
	GetByID(ctx context.Context, id string) (*dto.HRSystemConfig, error)
	UpdateLastSync(ctx context.Context, id string, at time.Time) error
	InsertRun(ctx context.Context, run dto.SyncRun) error
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*dto.User, error)
	Create(ctx context.Context, u dto.User) (string, error)
	Update(ctx context.Context, u dto.User) error
}

type DepartmentRepository interface {
	UpsertByVendorID(ctx context.Context, d dto.Department) error
}

type JobRepository interface {
	UpsertByVendorID(ctx context.Context, j dto.Job) error
}

type AdapterResolver interface {
	Resolve(cfg dto.HRSystemConfig) (adapter.HRAdapter, error)
}

type Notifier interface {
	SyncCompleted(ctx context.Context, cfg dto.HRSystemConfig, result dto.SyncResult) error
}

// Orchestrator — один прогон синхронизации по включённым сущностям
// тенанта. Сущности идут параллельно с ограничением воркеров; отказ
// одной сущности не мешает остальным. Результат возвращается всегда,
// вызывающему достаточно смотреть Success и Errors.
type Orchestrator struct {
	configs     ConfigRepository
	users       UserRepository
	departments DepartmentRepository
	jobs        JobRepository
	adapters    AdapterResolver
	notifier    Notifier
	workerLimit int
	log         zerolog.Logger
}

type OrchestratorDeps struct {
	Configs     ConfigRepository
	Users       UserRepository
	Departments DepartmentRepository
	Jobs        JobRepository
	Adapters    AdapterResolver
	Notifier    Notifier
	WorkerLimit int
}

func NewOrchestrator(d OrchestratorDeps, log zerolog.Logger) *Orchestrator {
	limit := d.WorkerLimit
	if limit <= 0 {
		limit = 2
	}

	return &Orchestrator{
		configs:     d.Configs,
		users:       d.Users,
		departments: d.Departments,
		jobs:        d.Jobs,
		adapters:    d.Adapters,
		notifier:    d.Notifier,
		workerLimit: limit,
		log:         log.With().Str("component", "SyncOrchestrator").Logger(),
	}
}

// PerformSync выполняет прогон для конфигурации. entities пустой —
// берутся все сущности, включённые в настройках интеграции.
func (o *Orchestrator) PerformSync(ctx context.Context, configID string, entities []dto.EntityType) (*dto.SyncResult, error) {
	cfg, err := o.configs.GetByID(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("configs.GetByID: %w", err)
	}
	if !cfg.IsActive {
		return nil, fmt.Errorf("config %s: %w", configID, dto.ErrConfigInactive)
	}

	// Watermark снимается до начала выборки: записи, обновлённые во время
	// прогона, попадут в следующую дельту.
	startedAt := time.Now().UTC()

	hrAdapter, err := o.adapters.Resolve(*cfg)
	if err != nil {
		return nil, fmt.Errorf("adapters.Resolve: %w", err)
	}

	if len(entities) == 0 {
		entities = enabledEntities(cfg.SyncSettings.Entities)
	}

	result := &dto.SyncResult{
		SyncID:    uuid.New().String(),
		Timestamp: startedAt,
	}

	runLog := o.log.With().
		Str("sync_id", result.SyncID).
		Str("config_id", cfg.ID).
		Str("system_type", string(cfg.SystemType)).
		Logger()

	runLog.Info().Interface("entities", entities).Msg("sync started")

	entityResults := make([]dto.EntityResult, len(entities))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(o.workerLimit)

	for i, entity := range entities {
		group.Go(func() error {
			entityResults[i] = o.syncEntity(gctx, entity, hrAdapter, cfg)
			return nil
		})
	}

	// Горутины ошибок не возвращают: отказ сущности уже свёрнут
	// в её EntityResult.
	_ = group.Wait()

	for _, er := range entityResults {
		result.Stats.Add(er.Stats)
		result.Errors = append(result.Errors, er.Errors...)
		result.Warnings = append(result.Warnings, er.Warnings...)
	}
	result.Success = result.Stats.Failed == 0

	if result.Success {
		if err := o.configs.UpdateLastSync(ctx, cfg.ID, startedAt); err != nil {
			// Watermark остаётся старым: повторная выборка тех же записей
			// идемпотентна, молчаливый сдвиг при сбое — нет.
			runLog.Error().Err(err).Msg("failed to persist watermark")
			result.Warnings = append(result.Warnings, fmt.Sprintf("watermark not persisted: %v", err))
		}
	}

	run := dto.SyncRun{
		SyncID:     result.SyncID,
		ConfigID:   cfg.ID,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Success:    result.Success,
		Stats:      result.Stats,
		Errors:     result.Errors,
		Warnings:   result.Warnings,
	}
	if err := o.configs.InsertRun(ctx, run); err != nil {
		runLog.Error().Err(err).Msg("failed to persist sync run")
	}

	if o.notifier != nil {
		if err := o.notifier.SyncCompleted(ctx, *cfg, *result); err != nil {
			runLog.Error().Err(err).Msg("failed to emit sync notification")
		}
	}

	runLog.Info().
		Bool("success", result.Success).
		Int("total", result.Stats.TotalRecords).
		Int("successful", result.Stats.Successful).
		Int("failed", result.Stats.Failed).
		Int("skipped", result.Stats.Skipped).
		Msg("sync finished")

	return result, nil
}

func enabledEntities(e dto.SyncEntities) []dto.EntityType {
	var out []dto.EntityType
	if e.Employees {
		out = append(out, dto.EntityEmployees)
	}
	if e.Departments {
		out = append(out, dto.EntityDepartments)
	}
	if e.JobPositions {
		out = append(out, dto.EntityJobPositions)
	}
	return out
}

// syncEntity изолирует прогон одной сущности: ни ошибка, ни паника не
// выходят за его границу, системный отказ сущности сворачивается в один
// сентинел "<entity>_sync" с failed == 1.
func (o *Orchestrator) syncEntity(ctx context.Context, entity dto.EntityType, a adapter.HRAdapter, cfg *dto.HRSystemConfig) (res dto.EntityResult) {
	defer func() {
		if rvr := recover(); rvr != nil {
			o.log.Error().
				Interface("panic", rvr).
				Str("entity", string(entity)).
				Str("config_id", cfg.ID).
				Msg("recovered from panic in entity sync")

			res = entityFailure(entity, fmt.Errorf("panic: %v", rvr))
		}
	}()

	switch entity {
	case dto.EntityEmployees:
		return o.syncEmployees(ctx, a, cfg)
	case dto.EntityDepartments:
		return o.syncDepartments(ctx, a, cfg)
	case dto.EntityJobPositions:
		return o.syncJobPositions(ctx, a, cfg)
	default:
		return entityFailure(entity, fmt.Errorf("unknown entity type %q", entity))
	}
}

// entityFailure — системный отказ всей сущности: один сентинел в errors,
// failed == 1, счётчики согласованы.
func entityFailure(entity dto.EntityType, err error) dto.EntityResult {
	return dto.EntityResult{
		Entity: entity,
		Stats:  dto.SyncStats{TotalRecords: 1, Failed: 1},
		Errors: []dto.SyncError{{
			RecordID: string(entity) + "_sync",
			Error:    err.Error(),
			Severity: dto.SeverityError,
		}},
	}
}

// recordFailure добавляет ошибку уровня записи и продолжает обработку.
func recordFailure(res *dto.EntityResult, recordID string, err error) {
	res.Errors = append(res.Errors, dto.SyncError{
		RecordID: recordID,
		Error:    err.Error(),
		Severity: dto.SeverityError,
	})
	res.Stats.Failed++
}

var errInvalidEmail = errors.New("invalid email")
