package dto

import (
	"time"
)

// EntityType — тип синхронизируемой сущности.
type EntityType string

const (
	EntityEmployees    EntityType = "employees"
	EntityDepartments  EntityType = "departments"
	EntityJobPositions EntityType = "jobPositions"
)

// ErrorSeverity — серьёзность ошибки в отчёте синхронизации.
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// SyncStats — счётчики одного прогона или одной сущности.
// Инвариант: TotalRecords == Successful + Failed + Skipped.
type SyncStats struct {
	TotalRecords int `json:"totalRecords"`
	Successful   int `json:"successful"`
	Failed       int `json:"failed"`
	Skipped      int `json:"skipped"`
}

// Add суммирует счётчики другой порции в текущие.
func (s *SyncStats) Add(other SyncStats) {
	s.TotalRecords += other.TotalRecords
	s.Successful += other.Successful
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

// SyncError — ошибка уровня записи (или сентинел "<entity>_sync" для
// отказа всей сущности).
type SyncError struct {
	RecordID string        `json:"recordId"`
	Error    string        `json:"error"`
	Severity ErrorSeverity `json:"severity"`
}

// SyncResult — итог одного прогона синхронизации. Возвращается всегда,
// независимо от успеха; после возврата не изменяется.
type SyncResult struct {
	Success   bool        `json:"success"`
	SyncID    string      `json:"syncId"`
	Timestamp time.Time   `json:"timestamp"`
	Stats     SyncStats   `json:"stats"`
	Errors    []SyncError `json:"errors,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
}

// EntityResult — итог синхронизации одной сущности внутри прогона.
type EntityResult struct {
	Entity   EntityType  `json:"entity"`
	Stats    SyncStats   `json:"stats"`
	Errors   []SyncError `json:"errors,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// SyncRun — сохранённая запись прогона для последующего разбора.
type SyncRun struct {
	SyncID     string      `json:"sync_id"`
	ConfigID   string      `json:"config_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Success    bool        `json:"success"`
	Stats      SyncStats   `json:"stats"`
	Errors     []SyncError `json:"errors,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
}
