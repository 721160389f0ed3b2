package api

import (
	"github.com/valyala/fasthttp"
)

// @Summary Проверка живости сервиса
// @Tags    Health
// @Produce json
// @Success 200 {object} okResponse
// @Router  /health [get]
func (s *Service) healthHandler(ctx *fasthttp.RequestCtx) {
	ok(ctx, "alive")
}
