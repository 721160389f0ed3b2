package adapter

import (
	"context"
	"time"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// HRAdapter — единый контракт поверх внешней HR-системы. Одна реализация
// на вендора; вся специфика полей, enum'ов и аутентификации живёт внутри
// реализации, оркестратор вендоров по имени не различает.
//
// Семантика ошибок: методы с I/O возвращают ошибку при транспортном или
// HTTP-сбое; ValidateConnection сбой аутентификации ошибкой не считает.
// Операция, которой у вендора нет, возвращает dto.ErrUnsupportedOperation.
type HRAdapter interface {
	SystemType() dto.SystemType

	// ValidateConnection выполняет одно дешёвое аутентифицированное чтение.
	// false при любом не-2xx или транспортном сбое.
	ValidateConnection(ctx context.Context) bool

	// GetEmployees возвращает сотрудников: полная выборка при since == nil,
	// дельта по вендорскому фильтру иначе.
	GetEmployees(ctx context.Context, since *time.Time) ([]dto.HREmployee, error)
	GetDepartments(ctx context.Context) ([]dto.HRDepartment, error)
	GetJobPositions(ctx context.Context) ([]dto.HRJobPosition, error)

	// CreateEmployee возвращает нативный id вендора.
	CreateEmployee(ctx context.Context, emp dto.HREmployee) (string, error)
	UpdateEmployee(ctx context.Context, vendorID string, emp dto.HREmployee) error
	CreateJobPosition(ctx context.Context, pos dto.HRJobPosition) (string, error)
	UpdateJobPosition(ctx context.Context, vendorID string, pos dto.HRJobPosition) error

	// HandleWebhook — чистая нормализация без I/O. Незнакомая пара
	// событие×объект — dto.ErrUnsupportedWebhookEvent, без угадывания.
	HandleWebhook(raw []byte) (*dto.WebhookPayload, error)
}

// OrEmpty возвращает s либо fallback, если s пуст. Для обязательных
// отображаемых полей (название подразделения, заголовок вакансии):
// запись без имени вендоры отдают, пустой заголовок в локальные данные
// не протекает. Опциональные поля сотрудника остаются пустыми как есть.
func OrEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// OrNow парсит дату вендора в одном из форматов, при неудаче — текущее время.
func OrNow(raw string, layouts ...string) time.Time {
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
