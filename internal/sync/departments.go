package sync

import (
	"context"
	"fmt"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// syncDepartments повторяет форму маршрута сотрудников: выборка,
// per-record upsert в локальные подразделения, изоляция ошибок на записи.
func (o *Orchestrator) syncDepartments(ctx context.Context, a adapter.HRAdapter, cfg *dto.HRSystemConfig) dto.EntityResult {
	res := dto.EntityResult{Entity: dto.EntityDepartments}

	departments, err := a.GetDepartments(ctx)
	if err != nil {
		return entityFailure(dto.EntityDepartments, fmt.Errorf("adapter.GetDepartments: %w", err))
	}

	res.Stats.TotalRecords = len(departments)

	for _, dep := range departments {
		if cfg.SyncSettings.Direction == dto.SyncExportOnly {
			res.Stats.Skipped++
			continue
		}

		if dep.ID == "" {
			recordFailure(&res, dep.Name, fmt.Errorf("department without vendor id"))
			continue
		}

		local := dto.Department{
			VendorID: dep.ID,
			Name:     dep.Name,
		}
		if dep.ParentID != "" {
			local.ParentID = &dep.ParentID
		}

		if err := o.departments.UpsertByVendorID(ctx, local); err != nil {
			recordFailure(&res, dep.ID, fmt.Errorf("departments.UpsertByVendorID: %w", err))
			continue
		}

		res.Stats.Successful++
	}

	return res
}
