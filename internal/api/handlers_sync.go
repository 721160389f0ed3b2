package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
	"github.com/valyala/fasthttp"
)

type triggerSyncRequest struct {
	Entities []dto.EntityType `json:"entities"`
}

// @Summary Запуск прогона синхронизации для интеграции
// @Tags    Sync
// @Accept  json
// @Produce json
// @Param   config_id path string true "Идентификатор интеграции"
// @Param   request body triggerSyncRequest false "Подмножество сущностей (по умолчанию — все включённые)"
// @Success 200 {object} dto.SyncResult
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "Интеграция отключена"
// @Failure 500 {object} errorResponse
// @Router  /sync/{config_id} [post]
func (s *Service) triggerSync(ctx *fasthttp.RequestCtx) {
	configID := ctx.UserValue("config_id").(string)
	if strings.TrimSpace(configID) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, ErrConfigIDRequired)
		return
	}

	var req triggerSyncRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			badRequest(ctx, "invalid_json", "Некорректный JSON")
			return
		}
	}

	for _, entity := range req.Entities {
		switch entity {
		case dto.EntityEmployees, dto.EntityDepartments, dto.EntityJobPositions:
		default:
			badRequest(ctx, "invalid_entity", fmt.Sprintf("Неизвестная сущность %q", entity))
			return
		}
	}

	result, err := s.orchestrator.PerformSync(ctx, configID, req.Entities)
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrNotFound):
			writeError(ctx, fasthttp.StatusNotFound, ErrIntegrationNotFound)
		case errors.Is(err, dto.ErrConfigInactive):
			writeError(ctx, fasthttp.StatusConflict, ErrIntegrationInactiveMsg)
		default:
			writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("orchestrator.PerformSync: %w", err))
		}
		return
	}

	// Частичный сбой — не HTTP-ошибка: вызывающий смотрит success и errors.
	writeJSON(ctx, fasthttp.StatusOK, result)
}
