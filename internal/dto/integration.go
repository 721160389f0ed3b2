package dto

import (
	"encoding/json"
	"time"
)

// SystemType — поддерживаемые внешние HR-системы.
type SystemType string

const (
	SystemBambooHR   SystemType = "bamboohr"
	SystemServiceNow SystemType = "servicenow"
	SystemSage       SystemType = "sage"
	SystemZoho       SystemType = "zoho"
)

// SyncDirection — направление синхронизации для интеграции.
type SyncDirection string

const (
	SyncImportOnly    SyncDirection = "import_only"
	SyncExportOnly    SyncDirection = "export_only"
	SyncBidirectional SyncDirection = "bidirectional"
)

// SyncEntities — какие сущности включены в синхронизацию.
type SyncEntities struct {
	Employees    bool `json:"employees"`
	Departments  bool `json:"departments"`
	JobPositions bool `json:"job_positions"`
}

// SyncSettings — настройки синхронизации интеграции.
type SyncSettings struct {
	Direction SyncDirection `json:"direction"`
	Entities  SyncEntities  `json:"entities"`
}

// FieldMapping — правило переноса поля вендора в поле приложения.
// Поля вне правил проходят без изменений.
type FieldMapping struct {
	SourceField string `json:"source_field"`
	TargetField string `json:"target_field"`
}

// HRSystemConfig — настройка интеграции для одной пары tenant/система.
// Credentials — непрозрачный для оркестратора блок, его читает только адаптер.
// LastSync двигает только успешный прогон оркестратора.
type HRSystemConfig struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	SystemType    SystemType      `json:"system_type"`
	Credentials   json.RawMessage `json:"credentials"`
	SyncSettings  SyncSettings    `json:"sync_settings"`
	FieldMappings []FieldMapping  `json:"field_mappings"`
	LastSync      *time.Time      `json:"last_sync,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
