package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
	"github.com/valyala/fasthttp"
)

// @Summary Приём вебхука внешней HR-системы
// @Tags    Webhooks
// @Accept  json
// @Produce json
// @Param   config_id path string true "Идентификатор интеграции"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse "Незнакомое событие вендора (fail-closed) или пустое тело"
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "Интеграция отключена"
// @Failure 500 {object} errorResponse "Сбой применения — вендор повторит доставку"
// @Router  /webhooks/{config_id} [post]
func (s *Service) receiveWebhook(ctx *fasthttp.RequestCtx) {
	configID := ctx.UserValue("config_id").(string)
	if strings.TrimSpace(configID) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, ErrConfigIDRequired)
		return
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		badRequest(ctx, "empty_body", "Пустое тело вебхука")
		return
	}

	payload, err := s.webhooks.Handle(ctx, configID, body)
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrUnsupportedWebhookEvent):
			badRequest(ctx, "unsupported_webhook_event", err.Error())
		case errors.Is(err, dto.ErrNotFound):
			writeError(ctx, fasthttp.StatusNotFound, ErrIntegrationNotFound)
		case errors.Is(err, dto.ErrConfigInactive):
			writeError(ctx, fasthttp.StatusConflict, ErrIntegrationInactiveMsg)
		default:
			writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("webhooks.Handle: %w", err))
		}
		return
	}

	ok(ctx, fmt.Sprintf("Событие %s обработано", payload.EventType))
}
