package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// syncJobPositions — та же форма: выборка, per-record upsert в локальные
// вакансии. Синтезированные вакансии (id вида "title:...") помечаются
// предупреждением — деградированный режим вендора без нативного API.
func (o *Orchestrator) syncJobPositions(ctx context.Context, a adapter.HRAdapter, cfg *dto.HRSystemConfig) dto.EntityResult {
	res := dto.EntityResult{Entity: dto.EntityJobPositions}

	positions, err := a.GetJobPositions(ctx)
	if err != nil {
		return entityFailure(dto.EntityJobPositions, fmt.Errorf("adapter.GetJobPositions: %w", err))
	}

	res.Stats.TotalRecords = len(positions)

	synthesized := 0
	for _, pos := range positions {
		if strings.HasPrefix(pos.ID, "title:") {
			synthesized++
		}

		if cfg.SyncSettings.Direction == dto.SyncExportOnly {
			res.Stats.Skipped++
			continue
		}

		if pos.ID == "" {
			recordFailure(&res, pos.Title, fmt.Errorf("job position without vendor id"))
			continue
		}

		local := dto.Job{
			VendorID: pos.ID,
			Title:    pos.Title,
			Status:   pos.Status,
		}
		if pos.Department != "" {
			local.Department = &pos.Department
		}
		if pos.Location != "" {
			local.Location = &pos.Location
		}

		if err := o.jobs.UpsertByVendorID(ctx, local); err != nil {
			recordFailure(&res, pos.ID, fmt.Errorf("jobs.UpsertByVendorID: %w", err))
			continue
		}

		res.Stats.Successful++
	}

	if synthesized > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d job positions synthesized from employee titles (vendor has no native positions API)", synthesized,
		))
	}

	return res
}
