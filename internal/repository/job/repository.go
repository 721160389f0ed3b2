package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
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

// Repository — локальные вакансии, зеркалируемые из внешних систем.
type Repository struct {
	pool PgxPoolIface
}

func NewRepository(pool PgxPoolIface) *Repository {
	return &Repository{pool: pool}
}

// UpsertByVendorID — идемпотентный upsert по нативному id вендора.
func (r *Repository) UpsertByVendorID(ctx context.Context, j dto.Job) error {
	query := `
insert into jobs (id, vendor_id, title, department, location, status, updated_at)
values (@id, @vendor_id, @title, @department, @location, @status, now())
on conflict (vendor_id) do update set
  title      = excluded.title,
  department = coalesce(excluded.department, jobs.department),
  location   = coalesce(excluded.location, jobs.location),
  status     = excluded.status,
  updated_at = now();
`
	id := j.ID
	if id == "" {
		id = uuid.New().String()
	}

	args := pgx.NamedArgs{
		"id":         id,
		"vendor_id":  j.VendorID,
		"title":      j.Title,
		"department": j.Department,
		"location":   j.Location,
		"status":     string(j.Status),
	}

	if _, err := r.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

// CloseByVendorID закрывает вакансию по событию job.closed.
func (r *Repository) CloseByVendorID(ctx context.Context, vendorID string) error {
	query := `update jobs set status = 'closed', updated_at = now() where vendor_id = $1;`

	tag, err := r.pool.Exec(ctx, query, vendorID)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}
