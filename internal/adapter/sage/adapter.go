package sage

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

// Credentials — настройки подключения Sage HR: поддомен и API-ключ.
type Credentials struct {
	Subdomain string `json:"subdomain"`
	APIKey    string `json:"api_key"`
}

// Adapter — адаптер Sage HR (/api/*, заголовок X-Auth-Token).
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
	if creds.Subdomain == "" || creds.APIKey == "" {
		return nil, fmt.Errorf("sage: subdomain and api_key are required")
	}

	client := adapter.NewClient(adapter.ClientOptions{
		BaseURL: fmt.Sprintf("https://%s.sage.hr/api", creds.Subdomain),
		Timeout: timeout,
		RPS:     5,
		Authorize: func(req *http.Request) {
			req.Header.Set("X-Auth-Token", creds.APIKey)
		},
	}, log)

	return &Adapter{
		client:    client,
		companyID: cfg.CompanyID,
		log:       log.With().Str("adapter", "sage").Logger(),
	}, nil
}

func (a *Adapter) SystemType() dto.SystemType { return dto.SystemSage }

func (a *Adapter) ValidateConnection(ctx context.Context) bool {
	query := url.Values{"per_page": {"1"}}
	err := a.client.DoJSON(ctx, http.MethodGet, "/employees", query, nil, nil)
	return err == nil
}

type employeeRecord struct {
	ID             json.Number `json:"id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email"`
	MobilePhone    string      `json:"mobile_phone"`
	Position       string      `json:"position"`
	Team           string      `json:"team"`
	EmploymentType string      `json:"employment_status"`
	Active         bool        `json:"active"`
	StartDate      string      `json:"employment_start_date"`
	UpdatedAt      string      `json:"updated_at"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func (a *Adapter) GetEmployees(ctx context.Context, since *time.Time) ([]dto.HREmployee, error) {
	query := url.Values{}
	if since != nil {
		query.Set("updated_after", since.UTC().Format(time.RFC3339))
	}

	var resp listResponse[employeeRecord]
	if err := a.client.DoJSON(ctx, http.MethodGet, "/employees", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	out := make([]dto.HREmployee, 0, len(resp.Data))
	for _, rec := range resp.Data {
		out = append(out, a.normalizeEmployee(rec))
	}

	return out, nil
}

func (a *Adapter) normalizeEmployee(rec employeeRecord) dto.HREmployee {
	status := dto.EmployeeActive
	if !rec.Active {
		status = dto.EmployeeInactive
	}

	return dto.HREmployee{
		ID:             rec.ID.String(),
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		Email:          rec.Email,
		Phone:          rec.MobilePhone,
		JobTitle:       rec.Position,
		Department:     rec.Team,
		EmploymentType: MapEmploymentType(rec.EmploymentType),
		Status:         status,
		HireDate:       adapter.OrNow(rec.StartDate),
		UpdatedAt:      adapter.OrNow(rec.UpdatedAt),
	}
}

// MapEmploymentType — вендорский статус занятости во внутренний enum.
func MapEmploymentType(raw string) dto.EmploymentType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "part_time", "part-time":
		return dto.EmploymentPartTime
	case "contractor", "freelance":
		return dto.EmploymentContractor
	case "intern", "trainee":
		return dto.EmploymentIntern
	default:
		return dto.EmploymentFullTime
	}
}

type teamRecord struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	ManagerID json.Number `json:"manager_id"`
}

func (a *Adapter) GetDepartments(ctx context.Context) ([]dto.HRDepartment, error) {
	var resp listResponse[teamRecord]
	if err := a.client.DoJSON(ctx, http.MethodGet, "/teams", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	out := make([]dto.HRDepartment, 0, len(resp.Data))
	for _, rec := range resp.Data {
		out = append(out, dto.HRDepartment{
			ID:   rec.ID.String(),
			Name: adapter.OrEmpty(rec.Name, "Unnamed"),
			Head: rec.ManagerID.String(),
		})
	}

	return out, nil
}

type positionRecord struct {
	ID        json.Number `json:"id"`
	Title     string      `json:"title"`
	Team      string      `json:"team"`
	Location  string      `json:"location"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
}

func (a *Adapter) GetJobPositions(ctx context.Context) ([]dto.HRJobPosition, error) {
	var resp listResponse[positionRecord]
	if err := a.client.DoJSON(ctx, http.MethodGet, "/positions", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	out := make([]dto.HRJobPosition, 0, len(resp.Data))
	for _, rec := range resp.Data {
		out = append(out, dto.HRJobPosition{
			ID:         rec.ID.String(),
			Title:      adapter.OrEmpty(rec.Title, "Untitled"),
			Department: rec.Team,
			Location:   rec.Location,
			Status:     MapPositionStatus(rec.Status),
			OpenedAt:   adapter.OrNow(rec.CreatedAt),
		})
	}

	return out, nil
}

// MapPositionStatus — вендорский статус вакансии во внутренний enum.
func MapPositionStatus(raw string) dto.PositionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on_hold", "paused":
		return dto.PositionOnHold
	case "closed", "archived":
		return dto.PositionClosed
	default:
		return dto.PositionOpen
	}
}

func (a *Adapter) CreateEmployee(ctx context.Context, emp dto.HREmployee) (string, error) {
	var resp struct {
		Data struct {
			ID json.Number `json:"id"`
		} `json:"data"`
	}
	if err := a.client.DoJSON(ctx, http.MethodPost, "/employees", nil, employeeWritePayload(emp), &resp); err != nil {
		return "", fmt.Errorf("client.DoJSON: %w", err)
	}

	return resp.Data.ID.String(), nil
}

func (a *Adapter) UpdateEmployee(ctx context.Context, vendorID string, emp dto.HREmployee) error {
	payload := employeeWritePayload(emp)
	if len(payload) == 0 {
		return nil
	}

	if err := a.client.DoJSON(ctx, http.MethodPut, "/employees/"+vendorID, nil, payload, nil); err != nil {
		return fmt.Errorf("client.DoJSON: %w", err)
	}

	return nil
}

func employeeWritePayload(emp dto.HREmployee) map[string]string {
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
		payload["mobile_phone"] = emp.Phone
	}
	if emp.JobTitle != "" {
		payload["position"] = emp.JobTitle
	}
	if emp.Department != "" {
		payload["team"] = emp.Department
	}
	return payload
}

func (a *Adapter) CreateJobPosition(ctx context.Context, pos dto.HRJobPosition) (string, error) {
	var resp struct {
		Data struct {
			ID json.Number `json:"id"`
		} `json:"data"`
	}
	if err := a.client.DoJSON(ctx, http.MethodPost, "/positions", nil, positionWritePayload(pos), &resp); err != nil {
		return "", fmt.Errorf("client.DoJSON: %w", err)
	}

	return resp.Data.ID.String(), nil
}

func (a *Adapter) UpdateJobPosition(ctx context.Context, vendorID string, pos dto.HRJobPosition) error {
	payload := positionWritePayload(pos)
	if len(payload) == 0 {
		return nil
	}

	if err := a.client.DoJSON(ctx, http.MethodPut, "/positions/"+vendorID, nil, payload, nil); err != nil {
		return fmt.Errorf("client.DoJSON: %w", err)
	}

	return nil
}

func positionWritePayload(pos dto.HRJobPosition) map[string]string {
	payload := make(map[string]string)
	if pos.Title != "" {
		payload["title"] = pos.Title
	}
	if pos.Department != "" {
		payload["team"] = pos.Department
	}
	if pos.Location != "" {
		payload["location"] = pos.Location
	}
	if pos.Status != "" {
		payload["status"] = string(pos.Status)
	}
	return payload
}

type webhookEnvelope struct {
	Action    string          `json:"action"`
	Resource  string          `json:"resource"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// HandleWebhook классифицирует по паре action×resource, fail-closed.
func (a *Adapter) HandleWebhook(raw []byte) (*dto.WebhookPayload, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	type pair struct{ action, resource string }

	known := map[pair]dto.WebhookEventType{
		{"created", "employee"}:    dto.EventEmployeeCreated,
		{"updated", "employee"}:    dto.EventEmployeeUpdated,
		{"terminated", "employee"}: dto.EventEmployeeTerminated,
		{"created", "team"}:        dto.EventDepartmentCreated,
		{"updated", "team"}:        dto.EventDepartmentUpdated,
		{"created", "position"}:    dto.EventJobCreated,
		{"updated", "position"}:    dto.EventJobUpdated,
		{"closed", "position"}:     dto.EventJobClosed,
	}

	eventType, ok := known[pair{strings.ToLower(env.Action), strings.ToLower(env.Resource)}]
	if !ok {
		return nil, fmt.Errorf("sage: webhook %s on %s: %w", env.Action, env.Resource, dto.ErrUnsupportedWebhookEvent)
	}

	payload := &dto.WebhookPayload{
		SystemType: dto.SystemSage,
		EventType:  eventType,
		Timestamp:  adapter.OrNow(env.Timestamp),
		CompanyID:  a.companyID,
		Raw:        env.Data,
	}

	if len(env.Data) == 0 {
		return payload, nil
	}

	switch strings.ToLower(env.Resource) {
	case "employee":
		var rec employeeRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal data: %w", err)
		}
		emp := a.normalizeEmployee(rec)
		if eventType == dto.EventEmployeeTerminated {
			emp.Status = dto.EmployeeTerminated
		}
		payload.Employee = &emp
		payload.Raw = nil
	case "team":
		var rec teamRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal data: %w", err)
		}
		payload.Department = &dto.HRDepartment{
			ID:   rec.ID.String(),
			Name: adapter.OrEmpty(rec.Name, "Unnamed"),
			Head: rec.ManagerID.String(),
		}
		payload.Raw = nil
	case "position":
		var rec positionRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal data: %w", err)
		}
		pos := dto.HRJobPosition{
			ID:         rec.ID.String(),
			Title:      adapter.OrEmpty(rec.Title, "Untitled"),
			Department: rec.Team,
			Location:   rec.Location,
			Status:     MapPositionStatus(rec.Status),
			OpenedAt:   adapter.OrNow(rec.CreatedAt),
		}
		if eventType == dto.EventJobClosed {
			pos.Status = dto.PositionClosed
		}
		payload.Job = &pos
		payload.Raw = nil
	}

	return payload, nil
}
