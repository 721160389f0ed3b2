package servicenow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// Credentials — настройки подключения ServiceNow: инстанс и basic auth.
type Credentials struct {
	Instance string `json:"instance"`
	Username string `json:"username"`
	Password string `json:"password"`
}

const (
	tableUser       = "sys_user"
	tableDepartment = "cmn_department"
	tablePosition   = "sn_hr_core_position"
)

// Adapter — адаптер ServiceNow поверх Table API (/api/now/table/*).
// Дельта-выборка через sysparm_query=sys_updated_on>=....
type Adapter struct {
	client    *adapter.Client
	companyID string
	log       zerolog.Logger
}

func New(cfg dto.HRSystemConfig, timeout time.Duration, log zerolog.Logger) (*Adapter, error) {
	var creds Credentials
	if err := json.Unmarshal(cfg.Credentials, &creds); err != nil {
		return nil, fmt.Errorf("json.Unmarshal credentials: %w", err)
	}
	if creds.Instance == "" || creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("servicenow: instance, username and password are required")
	}

	client := adapter.NewClient(adapter.ClientOptions{
		BaseURL: fmt.Sprintf("https://%s.service-now.com/api/now", creds.Instance),
		Timeout: timeout,
		RPS:     10,
		Authorize: func(req *http.Request) {
			req.SetBasicAuth(creds.Username, creds.Password)
		},
	}, log)

	return &Adapter{
		client:    client,
		companyID: cfg.CompanyID,
		log:       log.With().Str("adapter", "servicenow").Logger(),
	}, nil
}

func (a *Adapter) SystemType() dto.SystemType { return dto.SystemServiceNow }

func (a *Adapter) ValidateConnection(ctx context.Context) bool {
	query := url.Values{"sysparm_limit": {"1"}}
	err := a.client.DoJSON(ctx, http.MethodGet, "/table/"+tableUser, query, nil, nil)
	return err == nil
}

type userRecord struct {
	SysID        string `json:"sys_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Title        string `json:"title"`
	Department   string `json:"u_department_name"`
	EmployeeType string `json:"u_employment_type"`
	Active       string `json:"active"`
	StartDate    string `json:"u_start_date"`
	SysUpdatedOn string `json:"sys_updated_on"`
}

type tableResponse[T any] struct {
	Result []T `json:"result"`
}

func (a *Adapter) GetEmployees(ctx context.Context, since *time.Time) ([]dto.HREmployee, error) {
	query := url.Values{"sysparm_display_value": {"true"}}
	if since != nil {
		query.Set("sysparm_query", "sys_updated_on>="+since.UTC().Format("2006-01-02 15:04:05"))
	}

	var resp tableResponse[userRecord]
	if err := a.client.DoJSON(ctx, http.MethodGet, "/table/"+tableUser, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	out := make([]dto.HREmployee, 0, len(resp.Result))
	for _, rec := range resp.Result {
		out = append(out, a.normalizeUser(rec))
	}

	return out, nil
}

func (a *Adapter) normalizeUser(rec userRecord) dto.HREmployee {
	return dto.HREmployee{
		ID:             rec.SysID,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		Email:          rec.Email,
		Phone:          rec.Phone,
		JobTitle:       rec.Title,
		Department:     rec.Department,
		EmploymentType: MapEmploymentType(rec.EmployeeType),
		Status:         MapStatus(rec.Active),
		HireDate:       adapter.OrNow(rec.StartDate),
		UpdatedAt:      adapter.OrNow(rec.SysUpdatedOn),
	}
}

// MapEmploymentType — вендорский тип занятости во внутренний enum.
func MapEmploymentType(raw string) dto.EmploymentType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "part_time", "part-time":
		return dto.EmploymentPartTime
	case "contractor":
		return dto.EmploymentContractor
	case "intern":
		return dto.EmploymentIntern
	default:
		return dto.EmploymentFullTime
	}
}

// MapStatus — у ServiceNow активность хранится строкой "true"/"false".
func MapStatus(active string) dto.EmployeeStatus {
	if strings.EqualFold(strings.TrimSpace(active), "false") {
		return dto.EmployeeInactive
	}
	return dto.EmployeeActive
}

type departmentRecord struct {
	SysID  string `json:"sys_id"`
	Name   string `json:"name"`
	Parent string `json:"parent"`
	Head   string `json:"dept_head"`
}

func (a *Adapter) GetDepartments(ctx context.Context) ([]dto.HRDepartment, error) {
	var resp tableResponse[departmentRecord]
	if err := a.client.DoJSON(ctx, http.MethodGet, "/table/"+tableDepartment, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	out := make([]dto.HRDepartment, 0, len(resp.Result))
	for _, rec := range resp.Result {
		out = append(out, dto.HRDepartment{
			ID:       rec.SysID,
			Name:     adapter.OrEmpty(rec.Name, "Unnamed"),
			ParentID: rec.Parent,
			Head:     rec.Head,
		})
	}

	return out, nil
}

type positionRecord struct {
	SysID      string `json:"sys_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Location   string `json:"location"`
	State      string `json:"state"`
	OpenedAt   string `json:"opened_at"`
}

func (a *Adapter) GetJobPositions(ctx context.Context) ([]dto.HRJobPosition, error) {
	var resp tableResponse[positionRecord]
	if err := a.client.DoJSON(ctx, http.MethodGet, "/table/"+tablePosition, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	out := make([]dto.HRJobPosition, 0, len(resp.Result))
	for _, rec := range resp.Result {
		out = append(out, dto.HRJobPosition{
			ID:         rec.SysID,
			Title:      adapter.OrEmpty(rec.Name, "Untitled"),
			Department: rec.Department,
			Location:   rec.Location,
			Status:     MapPositionState(rec.State),
			OpenedAt:   adapter.OrNow(rec.OpenedAt),
		})
	}

	return out, nil
}

// MapPositionState — вендорское состояние вакансии во внутренний enum.
func MapPositionState(raw string) dto.PositionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on_hold", "on hold", "paused":
		return dto.PositionOnHold
	case "closed", "filled", "cancelled":
		return dto.PositionClosed
	default:
		return dto.PositionOpen
	}
}

func (a *Adapter) CreateEmployee(ctx context.Context, emp dto.HREmployee) (string, error) {
	var resp struct {
		Result struct {
			SysID string `json:"sys_id"`
		} `json:"result"`
	}
	if err := a.client.DoJSON(ctx, http.MethodPost, "/table/"+tableUser, nil, userWritePayload(emp), &resp); err != nil {
		return "", fmt.Errorf("client.DoJSON: %w", err)
	}

	return resp.Result.SysID, nil
}

func (a *Adapter) UpdateEmployee(ctx context.Context, vendorID string, emp dto.HREmployee) error {
	payload := userWritePayload(emp)
	if len(payload) == 0 {
		return nil
	}

	if err := a.client.DoJSON(ctx, http.MethodPatch, "/table/"+tableUser+"/"+vendorID, nil, payload, nil); err != nil {
		return fmt.Errorf("client.DoJSON: %w", err)
	}

	return nil
}

func userWritePayload(emp dto.HREmployee) map[string]string {
	payload := make(map[string]string)
	if emp.FirstName != "" {
		payload["first_name"] = emp.FirstName
	}
	if emp.LastName != "" {
		payload["last_name"] = emp.LastName
	}
	if emp.Email != "" {
		payload["email"] = emp.Email
	}
	if emp.Phone != "" {
		payload["phone"] = emp.Phone
	}
	if emp.JobTitle != "" {
		payload["title"] = emp.JobTitle
	}
	if emp.Department != "" {
		payload["u_department_name"] = emp.Department
	}
	return payload
}

func (a *Adapter) CreateJobPosition(ctx context.Context, pos dto.HRJobPosition) (string, error) {
	var resp struct {
		Result struct {
			SysID string `json:"sys_id"`
		} `json:"result"`
	}
	if err := a.client.DoJSON(ctx, http.MethodPost, "/table/"+tablePosition, nil, positionWritePayload(pos), &resp); err != nil {
		return "", fmt.Errorf("client.DoJSON: %w", err)
	}

	return resp.Result.SysID, nil
}

func (a *Adapter) UpdateJobPosition(ctx context.Context, vendorID string, pos dto.HRJobPosition) error {
	payload := positionWritePayload(pos)
	if len(payload) == 0 {
		return nil
	}

	if err := a.client.DoJSON(ctx, http.MethodPatch, "/table/"+tablePosition+"/"+vendorID, nil, payload, nil); err != nil {
		return fmt.Errorf("client.DoJSON: %w", err)
	}

	return nil
}

func positionWritePayload(pos dto.HRJobPosition) map[string]string {
	payload := make(map[string]string)
	if pos.Title != "" {
		payload["name"] = pos.Title
	}
	if pos.Department != "" {
		payload["department"] = pos.Department
	}
	if pos.Location != "" {
		payload["location"] = pos.Location
	}
	if pos.Status != "" {
		payload["state"] = string(pos.Status)
	}
	return payload
}

type webhookEnvelope struct {
	Event     string          `json:"event"`
	TableName string          `json:"table_name"`
	Timestamp string          `json:"timestamp"`
	Record    json.RawMessage `json:"record"`
}

// HandleWebhook классифицирует по паре глагол×таблица. Любая незнакомая
// комбинация — отказ, сохранение состояния не допускается.
func (a *Adapter) HandleWebhook(raw []byte) (*dto.WebhookPayload, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	eventType, err := classify(env.Event, env.TableName)
	if err != nil {
		return nil, err
	}

	payload := &dto.WebhookPayload{
		SystemType: dto.SystemServiceNow,
		EventType:  eventType,
		Timestamp:  adapter.OrNow(env.Timestamp),
		CompanyID:  a.companyID,
		Raw:        env.Record,
	}

	if len(env.Record) == 0 {
		return payload, nil
	}

	switch strings.ToLower(env.TableName) {
	case tableUser:
		var rec userRecord
		if err := json.Unmarshal(env.Record, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal record: %w", err)
		}
		emp := a.normalizeUser(rec)
		if eventType == dto.EventEmployeeTerminated {
			emp.Status = dto.EmployeeTerminated
		}
		payload.Employee = &emp
		payload.Raw = nil
	case tableDepartment:
		var rec departmentRecord
		if err := json.Unmarshal(env.Record, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal record: %w", err)
		}
		payload.Department = &dto.HRDepartment{
			ID:       rec.SysID,
			Name:     adapter.OrEmpty(rec.Name, "Unnamed"),
			ParentID: rec.Parent,
			Head:     rec.Head,
		}
		payload.Raw = nil
	case tablePosition:
		var rec positionRecord
		if err := json.Unmarshal(env.Record, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal record: %w", err)
		}
		pos := dto.HRJobPosition{
			ID:         rec.SysID,
			Title:      adapter.OrEmpty(rec.Name, "Untitled"),
			Department: rec.Department,
			Location:   rec.Location,
			Status:     MapPositionState(rec.State),
			OpenedAt:   adapter.OrNow(rec.OpenedAt),
		}
		if eventType == dto.EventJobClosed {
			pos.Status = dto.PositionClosed
		}
		payload.Job = &pos
		payload.Raw = nil
	}

	return payload, nil
}

func classify(event, table string) (dto.WebhookEventType, error) {
	type pair struct{ event, table string }

	known := map[pair]dto.WebhookEventType{
		{"inserted", tableUser}:       dto.EventEmployeeCreated,
		{"updated", tableUser}:        dto.EventEmployeeUpdated,
		{"deleted", tableUser}:        dto.EventEmployeeTerminated,
		{"inserted", tableDepartment}: dto.EventDepartmentCreated,
		{"updated", tableDepartment}:  dto.EventDepartmentUpdated,
		{"inserted", tablePosition}:   dto.EventJobCreated,
		{"updated", tablePosition}:    dto.EventJobUpdated,
		{"closed", tablePosition}:     dto.EventJobClosed,
	}

	eventType, ok := known[pair{strings.ToLower(event), strings.ToLower(table)}]
	if !ok {
		return "", fmt.Errorf("servicenow: webhook %s on %s: %w", event, table, dto.ErrUnsupportedWebhookEvent)
	}

	return eventType, nil
}
