package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

type PgxPoolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository — хранилище настроек интеграций, watermark'ов и журналов прогонов.
type Repository struct {
	pool PgxPoolIface
}

func NewRepository(pool PgxPoolIface) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, cfg dto.HRSystemConfig) error {
	query := `
insert into hr_integration_config
  (id, company_id, system_type, credentials, sync_settings, field_mappings, is_active, created_at, updated_at)
values
  (@id, @company_id, @system_type, @credentials::jsonb, @sync_settings::jsonb, @field_mappings::jsonb, @is_active, now(), now());
`
	settings, err := json.Marshal(cfg.SyncSettings)
	if err != nil {
		return fmt.Errorf("json.Marshal sync_settings: %w", err)
	}
	mappings, err := json.Marshal(cfg.FieldMappings)
	if err != nil {
		return fmt.Errorf("json.Marshal field_mappings: %w", err)
	}

	args := pgx.NamedArgs{
		"id":             cfg.ID,
		"company_id":     cfg.CompanyID,
		"system_type":    string(cfg.SystemType),
		"credentials":    string(cfg.Credentials),
		"sync_settings":  string(settings),
		"field_mappings": string(mappings),
		"is_active":      cfg.IsActive,
	}

	if _, err := r.pool.Exec(ctx, query, args); err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return dto.ErrAlreadyExists
		}

		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*dto.HRSystemConfig, error) {
	query := `
select id, company_id, system_type, credentials, sync_settings, field_mappings, last_sync, is_active, created_at, updated_at
from hr_integration_config
where id = $1;
`
	return r.scanConfig(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanConfig(row pgx.Row) (*dto.HRSystemConfig, error) {
	var (
		out        dto.HRSystemConfig
		systemType string
		creds      []byte
		settings   []byte
		mappings   []byte
	)

	err := row.Scan(
		&out.ID,
		&out.CompanyID,
		&systemType,
		&creds,
		&settings,
		&mappings,
		&out.LastSync,
		&out.IsActive,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dto.ErrNotFound
		}

		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	out.SystemType = dto.SystemType(systemType)
	out.Credentials = creds

	if err := json.Unmarshal(settings, &out.SyncSettings); err != nil {
		return nil, fmt.Errorf("json.Unmarshal sync_settings: %w", err)
	}
	if len(mappings) > 0 {
		if err := json.Unmarshal(mappings, &out.FieldMappings); err != nil {
			return nil, fmt.Errorf("json.Unmarshal field_mappings: %w", err)
		}
	}

	return &out, nil
}

func (r *Repository) ListActive(ctx context.Context) ([]dto.HRSystemConfig, error) {
	query := `
select id, company_id, system_type, credentials, sync_settings, field_mappings, last_sync, is_active, created_at, updated_at
from hr_integration_config
where is_active
order by created_at;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var out []dto.HRSystemConfig
	for rows.Next() {
		cfg, err := r.scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return out, nil
}

func (r *Repository) Update(ctx context.Context, cfg dto.HRSystemConfig) error {
	query := `
update hr_integration_config set
  credentials    = @credentials::jsonb,
  sync_settings  = @sync_settings::jsonb,
  field_mappings = @field_mappings::jsonb,
  is_active      = @is_active,
  updated_at     = now()
where id = @id;
`
	settings, err := json.Marshal(cfg.SyncSettings)
	if err != nil {
		return fmt.Errorf("json.Marshal sync_settings: %w", err)
	}
	mappings, err := json.Marshal(cfg.FieldMappings)
	if err != nil {
		return fmt.Errorf("json.Marshal field_mappings: %w", err)
	}

	args := pgx.NamedArgs{
		"id":             cfg.ID,
		"credentials":    string(cfg.Credentials),
		"sync_settings":  string(settings),
		"field_mappings": string(mappings),
		"is_active":      cfg.IsActive,
	}

	tag, err := r.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}

// Deactivate гасит интеграцию при отключении; запись не удаляется.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	query := `update hr_integration_config set is_active = false, updated_at = now() where id = $1;`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}

// UpdateLastSync двигает watermark. Вызывается только после полностью
// успешного прогона, значением, снятым до начала выборки.
func (r *Repository) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	query := `update hr_integration_config set last_sync = $2, updated_at = now() where id = $1;`

	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}

// InsertRun пишет итог прогона в журнал sync_runs.
func (r *Repository) InsertRun(ctx context.Context, run dto.SyncRun) error {
	query := `
insert into sync_runs
  (sync_id, config_id, started_at, finished_at, success, total_records, successful, failed, skipped, errors, warnings)
values
  (@sync_id, @config_id, @started_at, @finished_at, @success, @total_records, @successful, @failed, @skipped, @errors::jsonb, @warnings::jsonb);
`
	errs, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("json.Marshal errors: %w", err)
	}
	warns, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("json.Marshal warnings: %w", err)
	}

	args := pgx.NamedArgs{
		"sync_id":       run.SyncID,
		"config_id":     run.ConfigID,
		"started_at":    run.StartedAt,
		"finished_at":   run.FinishedAt,
		"success":       run.Success,
		"total_records": run.Stats.TotalRecords,
		"successful":    run.Stats.Successful,
		"failed":        run.Stats.Failed,
		"skipped":       run.Stats.Skipped,
		"errors":        string(errs),
		"warnings":      string(warns),
	}

	if _, err := r.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *Repository) ListRuns(ctx context.Context, configID string, limit int) ([]dto.SyncRun, error) {
	query := `
select sync_id, config_id, started_at, finished_at, success, total_records, successful, failed, skipped, errors, warnings
from sync_runs
where config_id = $1
order by started_at desc
limit $2;
`
	rows, err := r.pool.Query(ctx, query, configID, limit)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var out []dto.SyncRun
	for rows.Next() {
		var (
			run   dto.SyncRun
			errs  []byte
			warns []byte
		)

		err = rows.Scan(
			&run.SyncID,
			&run.ConfigID,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Success,
			&run.Stats.TotalRecords,
			&run.Stats.Successful,
			&run.Stats.Failed,
			&run.Stats.Skipped,
			&errs,
			&warns,
		)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		if len(errs) > 0 {
			if err := json.Unmarshal(errs, &run.Errors); err != nil {
				return nil, fmt.Errorf("json.Unmarshal errors: %w", err)
			}
		}
		if len(warns) > 0 {
			if err := json.Unmarshal(warns, &run.Warnings); err != nil {
				return nil, fmt.Errorf("json.Unmarshal warnings: %w", err)
			}
		}

		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return out, nil
}
