package department

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

// Repository — локальные подразделения, зеркалируемые из внешних систем.
type Repository struct {
	pool PgxPoolIface
}

func NewRepository(pool PgxPoolIface) *Repository {
	return &Repository{pool: pool}
}

// UpsertByVendorID — идемпотентный upsert по нативному id вендора.
func (r *Repository) UpsertByVendorID(ctx context.Context, d dto.Department) error {
	query := `
insert into departments (id, vendor_id, name, parent_id, updated_at)
values (@id, @vendor_id, @name, @parent_id, now())
on conflict (vendor_id) do update set
  name       = excluded.name,
  parent_id  = coalesce(excluded.parent_id, departments.parent_id),
  updated_at = now();
`
	id := d.ID
	if id == "" {
		id = uuid.New().String()
	}

	args := pgx.NamedArgs{
		"id":        id,
		"vendor_id": d.VendorID,
		"name":      d.Name,
		"parent_id": d.ParentID,
	}

	if _, err := r.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}
