package api

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"
)

var (
	ErrConfigIDRequired       = errors.New("поле config_id не передано")
	ErrIntegrationNotFound    = errors.New("интеграция не найдена")
	ErrIntegrationExists      = errors.New("интеграция уже существует")
	ErrIntegrationInactiveMsg = errors.New("интеграция отключена")
)

type okResponse struct {
	Status string `json:"status" example:"ok"`
	Msg    string `json:"msg" example:"Готово"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, body any) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatusCode(statusCode)

	_ = json.NewEncoder(ctx).Encode(body)
}

func ok(ctx *fasthttp.RequestCtx, msg string) {
	writeJSON(ctx, fasthttp.StatusOK, okResponse{Status: "ok", Msg: msg})
}

func badRequest(ctx *fasthttp.RequestCtx, code, message string) {
	writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Code: code, Message: message})
}

func writeError(ctx *fasthttp.RequestCtx, httpStatus int, err error) {
	writeJSON(ctx, httpStatus, errorResponse{Code: fasthttp.StatusMessage(httpStatus), Message: err.Error()})
}
