package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
	"github.com/valyala/fasthttp"
)

type integrationRequest struct {
	ID            string             `json:"id"`
	CompanyID     string             `json:"company_id"`
	SystemType    dto.SystemType     `json:"system_type"`
	Credentials   json.RawMessage    `json:"credentials"`
	SyncSettings  dto.SyncSettings   `json:"sync_settings"`
	FieldMappings []dto.FieldMapping `json:"field_mappings"`
}

func (r integrationRequest) validate() error {
	if strings.TrimSpace(r.CompanyID) == "" {
		return errors.New("поле company_id не передано")
	}

	switch r.SystemType {
	case dto.SystemBambooHR, dto.SystemServiceNow, dto.SystemSage, dto.SystemZoho:
	default:
		return fmt.Errorf("неподдерживаемый тип системы %q", r.SystemType)
	}

	if len(r.Credentials) == 0 {
		return errors.New("поле credentials не передано")
	}

	switch r.SyncSettings.Direction {
	case dto.SyncImportOnly, dto.SyncExportOnly, dto.SyncBidirectional:
	default:
		return fmt.Errorf("неизвестное направление синхронизации %q", r.SyncSettings.Direction)
	}

	for _, m := range r.FieldMappings {
		if m.SourceField == "" || m.TargetField == "" {
			return errors.New("правило маппинга без source_field или target_field")
		}
	}

	return nil
}

// @Summary Список активных интеграций
// @Tags    Integrations
// @Produce json
// @Success 200 {array} dto.HRSystemConfig
// @Failure 500 {object} errorResponse
// @Router  /integrations [get]
func (s *Service) listIntegrations(ctx *fasthttp.RequestCtx) {
	configs, err := s.integrations.ListActive(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.ListActive: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, configs)
}

// @Summary Создание интеграции
// @Tags    Integrations
// @Accept  json
// @Produce json
// @Param   request body integrationRequest true "Параметры интеграции"
// @Success 201 {object} dto.HRSystemConfig
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /integrations [post]
func (s *Service) createIntegration(ctx *fasthttp.RequestCtx) {
	var req integrationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		badRequest(ctx, "invalid_json", "Некорректный JSON")
		return
	}

	if err := req.validate(); err != nil {
		badRequest(ctx, "invalid_integration", err.Error())
		return
	}

	cfg := dto.HRSystemConfig{
		ID:            req.ID,
		CompanyID:     req.CompanyID,
		SystemType:    req.SystemType,
		Credentials:   req.Credentials,
		SyncSettings:  req.SyncSettings,
		FieldMappings: req.FieldMappings,
		IsActive:      true,
	}

	if err := s.integrations.Create(ctx, cfg); err != nil {
		if errors.Is(err, dto.ErrAlreadyExists) {
			writeError(ctx, fasthttp.StatusConflict, ErrIntegrationExists)
			return
		}
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.Create: %w", err))
		return
	}

	created, err := s.integrations.GetByID(ctx, cfg.ID)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.GetByID: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusCreated, created)
}

// @Summary Интеграция по идентификатору
// @Tags    Integrations
// @Produce json
// @Param   config_id path string true "Идентификатор интеграции"
// @Success 200 {object} dto.HRSystemConfig
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /integrations/{config_id} [get]
func (s *Service) getIntegration(ctx *fasthttp.RequestCtx) {
	configID := ctx.UserValue("config_id").(string)

	cfg, err := s.integrations.GetByID(ctx, configID)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrIntegrationNotFound)
			return
		}
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.GetByID: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, cfg)
}

// @Summary Обновление интеграции
// @Tags    Integrations
// @Accept  json
// @Produce json
// @Param   config_id path string true "Идентификатор интеграции"
// @Param   request body integrationRequest true "Новые параметры"
// @Success 200 {object} dto.HRSystemConfig
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /integrations/{config_id} [put]
func (s *Service) updateIntegration(ctx *fasthttp.RequestCtx) {
	configID := ctx.UserValue("config_id").(string)

	var req integrationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		badRequest(ctx, "invalid_json", "Некорректный JSON")
		return
	}

	req.ID = configID
	if err := req.validate(); err != nil {
		badRequest(ctx, "invalid_integration", err.Error())
		return
	}

	cfg := dto.HRSystemConfig{
		ID:            configID,
		CompanyID:     req.CompanyID,
		SystemType:    req.SystemType,
		Credentials:   req.Credentials,
		SyncSettings:  req.SyncSettings,
		FieldMappings: req.FieldMappings,
	}

	if err := s.integrations.Update(ctx, cfg); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrIntegrationNotFound)
			return
		}
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.Update: %w", err))
		return
	}

	// Смена credentials должна пересоздать адаптер при следующем обращении.
	s.adapters.Invalidate(configID)

	updated, err := s.integrations.GetByID(ctx, configID)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.GetByID: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, updated)
}

// @Summary Отключение интеграции
// @Tags    Integrations
// @Produce json
// @Param   config_id path string true "Идентификатор интеграции"
// @Success 200 {object} okResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /integrations/{config_id} [delete]
func (s *Service) deactivateIntegration(ctx *fasthttp.RequestCtx) {
	configID := ctx.UserValue("config_id").(string)

	if err := s.integrations.Deactivate(ctx, configID); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrIntegrationNotFound)
			return
		}
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.Deactivate: %w", err))
		return
	}

	s.adapters.Invalidate(configID)

	ok(ctx, "Интеграция отключена, история прогонов сохранена")
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// @Summary Проверка подключения к внешней системе
// @Tags    Integrations
// @Produce json
// @Param   config_id path string true "Идентификатор интеграции"
// @Success 200 {object} validateResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /integrations/{config_id}/validate [post]
func (s *Service) validateIntegration(ctx *fasthttp.RequestCtx) {
	configID := ctx.UserValue("config_id").(string)

	cfg, err := s.integrations.GetByID(ctx, configID)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrIntegrationNotFound)
			return
		}
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.GetByID: %w", err))
		return
	}

	adp, err := s.adapters.Resolve(*cfg)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("adapters.Resolve: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, validateResponse{Valid: adp.ValidateConnection(ctx)})
}

// @Summary Журнал прогонов синхронизации
// @Tags    Integrations
// @Produce json
// @Param   config_id path string true "Идентификатор интеграции"
// @Param   limit query int false "Сколько последних прогонов вернуть (по умолчанию 20)"
// @Success 200 {array} dto.SyncRun
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /integrations/{config_id}/runs [get]
func (s *Service) listRuns(ctx *fasthttp.RequestCtx) {
	configID := ctx.UserValue("config_id").(string)

	if _, err := s.integrations.GetByID(ctx, configID); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrIntegrationNotFound)
			return
		}
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.GetByID: %w", err))
		return
	}

	limit := 20
	if raw := string(ctx.QueryArgs().Peek("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			badRequest(ctx, "invalid_limit", "limit должен быть числом от 1 до 200")
			return
		}
		limit = parsed
	}

	runs, err := s.integrations.ListRuns(ctx, configID, limit)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("integrations.ListRuns: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, runs)
}
