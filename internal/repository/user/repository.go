package user

import (
	"context"
	"errors"
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

// Repository — локальные учётные записи, с которыми сверяются записи
// сотрудников из внешних систем.
type Repository struct {
	pool PgxPoolIface
}

func NewRepository(pool PgxPoolIface) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*dto.User, error) {
	query := `
select id, email, first_name, last_name, phone, job_title, department, status, vendor_id, updated_at
from app_users
where lower(email) = lower($1);
`
	row := r.pool.QueryRow(ctx, query, email)

	var out dto.User
	err := row.Scan(
		&out.ID,
		&out.Email,
		&out.FirstName,
		&out.LastName,
		&out.Phone,
		&out.JobTitle,
		&out.Department,
		&out.Status,
		&out.VendorID,
		&out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dto.ErrNotFound
		}

		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return &out, nil
}

func (r *Repository) Create(ctx context.Context, u dto.User) (string, error) {
	query := `
insert into app_users
  (id, email, first_name, last_name, phone, job_title, department, status, vendor_id, updated_at)
values
  (@id, @email, @first_name, @last_name, @phone, @job_title, @department, @status, @vendor_id, now());
`
	id := u.ID
	if id == "" {
		id = uuid.New().String()
	}

	args := pgx.NamedArgs{
		"id":         id,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"job_title":  u.JobTitle,
		"department": u.Department,
		"status":     string(u.Status),
		"vendor_id":  u.VendorID,
	}

	if _, err := r.pool.Exec(ctx, query, args); err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return "", dto.ErrAlreadyExists
		}

		return "", fmt.Errorf("pool.Exec: %w", err)
	}

	return id, nil
}

func (r *Repository) Update(ctx context.Context, u dto.User) error {
	query := `
update app_users set
  first_name = @first_name,
  last_name  = @last_name,
  phone      = coalesce(@phone, phone),
  job_title  = coalesce(@job_title, job_title),
  department = coalesce(@department, department),
  status     = @status,
  vendor_id  = coalesce(@vendor_id, vendor_id),
  updated_at = now()
where id = @id;
`
	args := pgx.NamedArgs{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"job_title":  u.JobTitle,
		"department": u.Department,
		"status":     string(u.Status),
		"vendor_id":  u.VendorID,
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

// UpsertByVendorID — идемпотентный upsert по нативному id вендора,
// путь для вебхук-событий employee.*.
func (r *Repository) UpsertByVendorID(ctx context.Context, u dto.User) error {
	query := `
insert into app_users (id, email, first_name, last_name, phone, job_title, department, status, vendor_id, updated_at)
values (@id, @email, @first_name, @last_name, @phone, @job_title, @department, @status, @vendor_id, now())
on conflict (vendor_id) do update set
  email      = excluded.email,
  first_name = excluded.first_name,
  last_name  = excluded.last_name,
  phone      = coalesce(excluded.phone, app_users.phone),
  job_title  = coalesce(excluded.job_title, app_users.job_title),
  department = coalesce(excluded.department, app_users.department),
  status     = excluded.status,
  updated_at = now();
`
	id := u.ID
	if id == "" {
		id = uuid.New().String()
	}

	args := pgx.NamedArgs{
		"id":         id,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"job_title":  u.JobTitle,
		"department": u.Department,
		"status":     string(u.Status),
		"vendor_id":  u.VendorID,
	}

	if _, err := r.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

// TerminateByVendorID помечает учётку уволенной по событию employee.terminated.
func (r *Repository) TerminateByVendorID(ctx context.Context, vendorID string) error {
	query := `update app_users set status = 'terminated', updated_at = now() where vendor_id = $1;`

	tag, err := r.pool.Exec(ctx, query, vendorID)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}
