package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// syncEmployees — эталонный маршрут сверки: выборка, маппинг полей,
// поиск локальной учётки по email, create/update/skip по направлению
// синхронизации. Ошибка одной записи не прерывает обработку остальных.
func (o *Orchestrator) syncEmployees(ctx context.Context, a adapter.HRAdapter, cfg *dto.HRSystemConfig) dto.EntityResult {
	res := dto.EntityResult{Entity: dto.EntityEmployees}

	employees, err := a.GetEmployees(ctx, cfg.LastSync)
	if err != nil {
		return entityFailure(dto.EntityEmployees, fmt.Errorf("adapter.GetEmployees: %w", err))
	}

	// Счётчик фиксируется до обработки: он есть, даже если упадёт
	// каждая запись.
	res.Stats.TotalRecords = len(employees)

	for _, emp := range employees {
		// В режиме export_only локальных записей нет — маппинг не нужен,
		// и его ошибки не должны портить счётчики.
		if cfg.SyncSettings.Direction == dto.SyncExportOnly {
			res.Stats.Skipped++
			continue
		}

		mapped, err := MapEmployee(emp, cfg.FieldMappings)
		if err != nil {
			recordFailure(&res, emp.ID, fmt.Errorf("MapEmployee: %w", err))
			continue
		}

		if err := o.reconcileEmployee(ctx, mapped); err != nil {
			recordFailure(&res, emp.ID, err)
			continue
		}

		res.Stats.Successful++
	}

	return res
}

// reconcileEmployee — решение create-vs-update по естественному ключу (email).
func (o *Orchestrator) reconcileEmployee(ctx context.Context, emp dto.HREmployee) error {
	if !strings.Contains(emp.Email, "@") {
		return fmt.Errorf("%w: %q", errInvalidEmail, emp.Email)
	}

	existing, err := o.users.GetByEmail(ctx, emp.Email)
	switch {
	case errors.Is(err, dto.ErrNotFound):
		_, err := o.users.Create(ctx, employeeToUser(emp, nil))
		if err != nil {
			return fmt.Errorf("users.Create: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("users.GetByEmail: %w", err)
	default:
		if err := o.users.Update(ctx, employeeToUser(emp, existing)); err != nil {
			return fmt.Errorf("users.Update: %w", err)
		}
		return nil
	}
}

func employeeToUser(emp dto.HREmployee, existing *dto.User) dto.User {
	u := dto.User{
		Email:     emp.Email,
		FirstName: emp.FirstName,
		LastName:  emp.LastName,
		Status:    emp.Status,
		VendorID:  &emp.ID,
	}
	if existing != nil {
		u.ID = existing.ID
	}
	if emp.Phone != "" {
		u.Phone = &emp.Phone
	}
	if emp.JobTitle != "" {
		u.JobTitle = &emp.JobTitle
	}
	if emp.Department != "" {
		u.Department = &emp.Department
	}
	return u
}
