package webhook

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

type ConfigRepository interface {
	GetByID(ctx context.Context, id string) (*dto.HRSystemConfig, error)
}

type UserRepository interface {
	UpsertByVendorID(ctx context.Context, u dto.User) error
	TerminateByVendorID(ctx context.Context, vendorID string) error
}

type DepartmentRepository interface {
	UpsertByVendorID(ctx context.Context, d dto.Department) error
}

type JobRepository interface {
	UpsertByVendorID(ctx context.Context, j dto.Job) error
	CloseByVendorID(ctx context.Context, vendorID string) error
}

type AdapterResolver interface {
	Resolve(cfg dto.HRSystemConfig) (adapter.HRAdapter, error)
}

type Notifier interface {
	WebhookProcessed(ctx context.Context, cfg dto.HRSystemConfig, payload dto.WebhookPayload) error
}

// Processor — приём вебхука: загрузить конфигурацию, нормализовать
// payload адаптером, применить уже нормализованное событие к локальному
// состоянию. Ошибка логируется с полным контекстом и отдаётся вызывающему:
// HTTP-граница должна дать вендору повод на retry.
type Processor struct {
	configs     ConfigRepository
	users       UserRepository
	departments DepartmentRepository
	jobs        JobRepository
	adapters    AdapterResolver
	notifier    Notifier
	log         zerolog.Logger
}

type ProcessorDeps struct {
	Configs     ConfigRepository
	Users       UserRepository
	Departments DepartmentRepository
	Jobs        JobRepository
	Adapters    AdapterResolver
	Notifier    Notifier
}

func NewProcessor(d ProcessorDeps, log zerolog.Logger) *Processor {
	return &Processor{
		configs:     d.Configs,
		users:       d.Users,
		departments: d.Departments,
		jobs:        d.Jobs,
		adapters:    d.Adapters,
		notifier:    d.Notifier,
		log:         log.With().Str("component", "WebhookProcessor").Logger(),
	}
}

// Handle обрабатывает один сырой payload вендора для интеграции configID.
func (p *Processor) Handle(ctx context.Context, configID string, raw []byte) (*dto.WebhookPayload, error) {
	cfg, err := p.configs.GetByID(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("configs.GetByID: %w", err)
	}
	if !cfg.IsActive {
		return nil, fmt.Errorf("config %s: %w", configID, dto.ErrConfigInactive)
	}

	hrAdapter, err := p.adapters.Resolve(*cfg)
	if err != nil {
		return nil, fmt.Errorf("adapters.Resolve: %w", err)
	}

	payload, err := hrAdapter.HandleWebhook(raw)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("config_id", configID).
			Str("system_type", string(cfg.SystemType)).
			RawJSON("raw_payload", raw).
			Msg("webhook normalization failed")

		return nil, err
	}

	if err := p.apply(ctx, payload); err != nil {
		p.log.Error().
			Err(err).
			Str("config_id", configID).
			Str("event_type", string(payload.EventType)).
			RawJSON("raw_payload", raw).
			Msg("webhook apply failed")

		return nil, err
	}

	if p.notifier != nil {
		if err := p.notifier.WebhookProcessed(ctx, *cfg, *payload); err != nil {
			p.log.Error().Err(err).Str("config_id", configID).Msg("failed to emit webhook notification")
		}
	}

	p.log.Info().
		Str("config_id", configID).
		Str("event_type", string(payload.EventType)).
		Msg("webhook processed")

	return payload, nil
}

// apply — тонкая диспетчеризация по уже нормализованному событию.
// Семантика события здесь не перевыводится.
func (p *Processor) apply(ctx context.Context, payload *dto.WebhookPayload) error {
	switch payload.EventType {
	case dto.EventEmployeeCreated, dto.EventEmployeeUpdated:
		if payload.Employee == nil {
			return fmt.Errorf("event %s without employee payload", payload.EventType)
		}
		u := dto.User{
			Email:     payload.Employee.Email,
			FirstName: payload.Employee.FirstName,
			LastName:  payload.Employee.LastName,
			Status:    payload.Employee.Status,
			VendorID:  &payload.Employee.ID,
		}
		if payload.Employee.Phone != "" {
			u.Phone = &payload.Employee.Phone
		}
		if payload.Employee.JobTitle != "" {
			u.JobTitle = &payload.Employee.JobTitle
		}
		if payload.Employee.Department != "" {
			u.Department = &payload.Employee.Department
		}
		if err := p.users.UpsertByVendorID(ctx, u); err != nil {
			return fmt.Errorf("users.UpsertByVendorID: %w", err)
		}

	case dto.EventEmployeeTerminated:
		if payload.Employee == nil {
			return fmt.Errorf("event %s without employee payload", payload.EventType)
		}
		if err := p.users.TerminateByVendorID(ctx, payload.Employee.ID); err != nil {
			return fmt.Errorf("users.TerminateByVendorID: %w", err)
		}

	case dto.EventDepartmentCreated, dto.EventDepartmentUpdated:
		if payload.Department == nil {
			return fmt.Errorf("event %s without department payload", payload.EventType)
		}
		d := dto.Department{
			VendorID: payload.Department.ID,
			Name:     payload.Department.Name,
		}
		if payload.Department.ParentID != "" {
			d.ParentID = &payload.Department.ParentID
		}
		if err := p.departments.UpsertByVendorID(ctx, d); err != nil {
			return fmt.Errorf("departments.UpsertByVendorID: %w", err)
		}

	case dto.EventJobCreated, dto.EventJobUpdated:
		if payload.Job == nil {
			return fmt.Errorf("event %s without job payload", payload.EventType)
		}
		j := dto.Job{
			VendorID: payload.Job.ID,
			Title:    payload.Job.Title,
			Status:   payload.Job.Status,
		}
		if payload.Job.Department != "" {
			j.Department = &payload.Job.Department
		}
		if payload.Job.Location != "" {
			j.Location = &payload.Job.Location
		}
		if err := p.jobs.UpsertByVendorID(ctx, j); err != nil {
			return fmt.Errorf("jobs.UpsertByVendorID: %w", err)
		}

	case dto.EventJobClosed:
		if payload.Job == nil {
			return fmt.Errorf("event %s without job payload", payload.EventType)
		}
		if err := p.jobs.CloseByVendorID(ctx, payload.Job.ID); err != nil {
			return fmt.Errorf("jobs.CloseByVendorID: %w", err)
		}

	default:
		return fmt.Errorf("event %s: %w", payload.EventType, dto.ErrUnsupportedWebhookEvent)
	}

	return nil
}
