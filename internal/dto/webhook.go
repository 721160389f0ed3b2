package dto

import (
	"encoding/json"
	"time"
)

// WebhookEventType — закрытая таксономия нормализованных событий.
type WebhookEventType string

const (
	EventEmployeeCreated    WebhookEventType = "employee.created"
	EventEmployeeUpdated    WebhookEventType = "employee.updated"
	EventEmployeeTerminated WebhookEventType = "employee.terminated"
	EventDepartmentCreated  WebhookEventType = "department.created"
	EventDepartmentUpdated  WebhookEventType = "department.updated"
	EventJobCreated         WebhookEventType = "job.created"
	EventJobUpdated         WebhookEventType = "job.updated"
	EventJobClosed          WebhookEventType = "job.closed"
)

// WebhookPayload — нормализованное событие вебхука. Для событий
// employee.* заполнен Employee, для department.*/job.* — Department/Job;
// Raw хранит исходную запись вендора, если адаптер не смог её разобрать.
type WebhookPayload struct {
	SystemType SystemType       `json:"system_type"`
	EventType  WebhookEventType `json:"event_type"`
	Employee   *HREmployee      `json:"employee,omitempty"`
	Department *HRDepartment    `json:"department,omitempty"`
	Job        *HRJobPosition   `json:"job,omitempty"`
	Raw        json.RawMessage  `json:"raw,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	CompanyID  string           `json:"company_id"`
}
