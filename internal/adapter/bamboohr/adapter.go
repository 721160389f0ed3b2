package bamboohr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// Credentials — настройки подключения BambooHR: поддомен компании и API-ключ.
type Credentials struct {
	Subdomain string `json:"subdomain"`
	APIKey    string `json:"api_key"`
}

// Adapter — адаптер BambooHR. Нативного API вакансий у вендора нет:
// чтение синтезирует вакансии из уникальных должностей сотрудников
// (деградированный режим), запись возвращает ErrUnsupportedOperation.
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
		return nil, fmt.Errorf("bamboohr: subdomain and api_key are required")
	}

	client := adapter.NewClient(adapter.ClientOptions{
		BaseURL: fmt.Sprintf("https://api.bamboohr.com/api/gateway.php/%s/v1", creds.Subdomain),
		Timeout: timeout,
		RPS:     5,
		Authorize: func(req *http.Request) {
			req.SetBasicAuth(creds.APIKey, "x")
		},
	}, log)

	return &Adapter{
		client:    client,
		companyID: cfg.CompanyID,
		log:       log.With().Str("adapter", "bamboohr").Logger(),
	}, nil
}

func (a *Adapter) SystemType() dto.SystemType { return dto.SystemBambooHR }

func (a *Adapter) ValidateConnection(ctx context.Context) bool {
	err := a.client.DoJSON(ctx, http.MethodGet, "/meta/users", nil, nil, nil)
	return err == nil
}

type directoryResponse struct {
	Employees []employeeRecord `json:"employees"`
}

type employeeRecord struct {
	ID               json.Number `json:"id"`
	FirstName        string      `json:"firstName"`
	LastName         string      `json:"lastName"`
	WorkEmail        string      `json:"workEmail"`
	MobilePhone      string      `json:"mobilePhone"`
	JobTitle         string      `json:"jobTitle"`
	Department       string      `json:"department"`
	EmploymentStatus string      `json:"employmentHistoryStatus"`
	Status           string      `json:"status"`
	HireDate         string      `json:"hireDate"`
	LastChanged      string      `json:"lastChanged"`
}

func (a *Adapter) GetEmployees(ctx context.Context, since *time.Time) ([]dto.HREmployee, error) {
	var resp directoryResponse

	if since == nil {
		if err := a.client.DoJSON(ctx, http.MethodGet, "/employees/directory", nil, nil, &resp); err != nil {
			return nil, fmt.Errorf("client.DoJSON: %w", err)
		}
	} else {
		query := url.Values{"since": {since.UTC().Format(time.RFC3339)}}
		if err := a.client.DoJSON(ctx, http.MethodGet, "/employees/changed", query, nil, &resp); err != nil {
			return nil, fmt.Errorf("client.DoJSON: %w", err)
		}
	}

	out := make([]dto.HREmployee, 0, len(resp.Employees))
	for _, rec := range resp.Employees {
		out = append(out, a.normalizeEmployee(rec))
	}

	return out, nil
}

func (a *Adapter) normalizeEmployee(rec employeeRecord) dto.HREmployee {
	return dto.HREmployee{
		ID:             rec.ID.String(),
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		Email:          rec.WorkEmail,
		Phone:          rec.MobilePhone,
		JobTitle:       rec.JobTitle,
		Department:     rec.Department,
		EmploymentType: MapEmploymentType(rec.EmploymentStatus),
		Status:         MapStatus(rec.Status),
		HireDate:       adapter.OrNow(rec.HireDate),
		UpdatedAt:      adapter.OrNow(rec.LastChanged),
	}
}

// MapEmploymentType переводит вендорский статус занятости во внутренний enum.
// Чистая функция, используется и в нормализации вебхуков.
func MapEmploymentType(raw string) dto.EmploymentType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "part-time", "part time":
		return dto.EmploymentPartTime
	case "contractor", "contract":
		return dto.EmploymentContractor
	case "intern", "internship":
		return dto.EmploymentIntern
	default:
		return dto.EmploymentFullTime
	}
}

// MapStatus переводит вендорский статус сотрудника во внутренний enum.
func MapStatus(raw string) dto.EmployeeStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inactive":
		return dto.EmployeeInactive
	case "terminated":
		return dto.EmployeeTerminated
	default:
		return dto.EmployeeActive
	}
}

type metaList struct {
	Alias   string `json:"alias"`
	Options []struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"options"`
}

func (a *Adapter) GetDepartments(ctx context.Context) ([]dto.HRDepartment, error) {
	var lists []metaList
	if err := a.client.DoJSON(ctx, http.MethodGet, "/meta/lists", nil, nil, &lists); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	var out []dto.HRDepartment
	for _, list := range lists {
		if list.Alias != "department" {
			continue
		}
		for _, opt := range list.Options {
			out = append(out, dto.HRDepartment{
				ID:   opt.ID.String(),
				Name: adapter.OrEmpty(opt.Name, "Unnamed"),
			})
		}
	}

	return out, nil
}

// GetJobPositions синтезирует вакансии из уникальных должностей справочника
// сотрудников — у BambooHR нет нативного API вакансий.
func (a *Adapter) GetJobPositions(ctx context.Context) ([]dto.HRJobPosition, error) {
	employees, err := a.GetEmployees(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("GetEmployees: %w", err)
	}

	seen := make(map[string]dto.HRJobPosition)
	for _, emp := range employees {
		if emp.JobTitle == "" {
			continue
		}
		key := strings.ToLower(emp.JobTitle)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = dto.HRJobPosition{
			ID:         "title:" + key,
			Title:      emp.JobTitle,
			Department: emp.Department,
			Status:     dto.PositionOpen,
			OpenedAt:   emp.HireDate,
		}
	}

	out := make([]dto.HRJobPosition, 0, len(seen))
	for _, pos := range seen {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (a *Adapter) CreateEmployee(ctx context.Context, emp dto.HREmployee) (string, error) {
	payload := employeeWritePayload(emp)

	var resp struct {
		ID json.Number `json:"id"`
	}
	if err := a.client.DoJSON(ctx, http.MethodPost, "/employees", nil, payload, &resp); err != nil {
		return "", fmt.Errorf("client.DoJSON: %w", err)
	}

	return resp.ID.String(), nil
}

func (a *Adapter) UpdateEmployee(ctx context.Context, vendorID string, emp dto.HREmployee) error {
	payload := employeeWritePayload(emp)
	if len(payload) == 0 {
		return nil
	}

	if err := a.client.DoJSON(ctx, http.MethodPost, "/employees/"+vendorID, nil, payload, nil); err != nil {
		return fmt.Errorf("client.DoJSON: %w", err)
	}

	return nil
}

// employeeWritePayload собирает частичный payload: только реально
// заполненные поля, семантика partial update.
func employeeWritePayload(emp dto.HREmployee) map[string]string {
	payload := make(map[string]string)
	if emp.FirstName != "" {
		payload["firstName"] = emp.FirstName
	}
	if emp.LastName != "" {
		payload["lastName"] = emp.LastName
	}
	if emp.Email != "" {
		payload["workEmail"] = emp.Email
	}
	if emp.Phone != "" {
		payload["mobilePhone"] = emp.Phone
	}
	if emp.JobTitle != "" {
		payload["jobTitle"] = emp.JobTitle
	}
	if emp.Department != "" {
		payload["department"] = emp.Department
	}
	return payload
}

func (a *Adapter) CreateJobPosition(_ context.Context, _ dto.HRJobPosition) (string, error) {
	return "", fmt.Errorf("bamboohr: create job position: %w", dto.ErrUnsupportedOperation)
}

func (a *Adapter) UpdateJobPosition(_ context.Context, _ string, _ dto.HRJobPosition) error {
	return fmt.Errorf("bamboohr: update job position: %w", dto.ErrUnsupportedOperation)
}

type webhookEnvelope struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Employee  *employeeRecord `json:"employee"`
	Record    json.RawMessage `json:"record"`
}

// HandleWebhook классифицирует вебхук BambooHR по полю type.
// Незнакомый type — отказ без угадывания.
func (a *Adapter) HandleWebhook(raw []byte) (*dto.WebhookPayload, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	var eventType dto.WebhookEventType
	switch env.Type {
	case "employee_created":
		eventType = dto.EventEmployeeCreated
	case "employee_updated":
		eventType = dto.EventEmployeeUpdated
	case "employee_terminated":
		eventType = dto.EventEmployeeTerminated
	default:
		return nil, fmt.Errorf("bamboohr: webhook type %q: %w", env.Type, dto.ErrUnsupportedWebhookEvent)
	}

	payload := &dto.WebhookPayload{
		SystemType: dto.SystemBambooHR,
		EventType:  eventType,
		Timestamp:  adapter.OrNow(env.Timestamp),
		CompanyID:  a.companyID,
	}
	if env.Employee != nil {
		emp := a.normalizeEmployee(*env.Employee)
		payload.Employee = &emp
	}

	return payload, nil
}
