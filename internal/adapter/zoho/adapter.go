package zoho

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

// Credentials — настройки подключения Zoho People: OAuth-токен и домен ДЦ.
type Credentials struct {
	AccessToken string `json:"access_token"`
	Domain      string `json:"domain"` // zoho.com, zoho.eu, ...
}

// Adapter — адаптер Zoho People (forms API, заголовок Zoho-oauthtoken).
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
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("zoho: access_token is required")
	}
	domain := creds.Domain
	if domain == "" {
		domain = "zoho.com"
	}

	client := adapter.NewClient(adapter.ClientOptions{
		BaseURL: fmt.Sprintf("https://people.%s/people/api", domain),
		Timeout: timeout,
		RPS:     3,
		Authorize: func(req *http.Request) {
			req.Header.Set("Authorization", "Zoho-oauthtoken "+creds.AccessToken)
		},
	}, log)

	return &Adapter{
		client:    client,
		companyID: cfg.CompanyID,
		log:       log.With().Str("adapter", "zoho").Logger(),
	}, nil
}

func (a *Adapter) SystemType() dto.SystemType { return dto.SystemZoho }

func (a *Adapter) ValidateConnection(ctx context.Context) bool {
	query := url.Values{"sIndex": {"1"}, "limit": {"1"}}
	err := a.client.DoJSON(ctx, http.MethodGet, "/forms/employee/getRecords", query, nil, nil)
	return err == nil
}

type employeeRecord struct {
	EmployeeID     string `json:"EmployeeID"`
	FirstName      string `json:"FirstName"`
	LastName       string `json:"LastName"`
	EmailID        string `json:"EmailID"`
	Mobile         string `json:"Mobile"`
	Designation    string `json:"Designation"`
	Department     string `json:"Department"`
	EmployeeType   string `json:"Employee_type"`
	EmployeeStatus string `json:"Employeestatus"`
	DateOfJoining  string `json:"Dateofjoining"`
	ModifiedTime   string `json:"ModifiedTime"`
}

type recordsResponse struct {
	Response struct {
		Result []map[string][]employeeRecord `json:"result"`
	} `json:"response"`
}

func (a *Adapter) GetEmployees(ctx context.Context, since *time.Time) ([]dto.HREmployee, error) {
	query := url.Values{}
	if since != nil {
		query.Set("searchParams", fmt.Sprintf(
			`{searchField: 'ModifiedTime', searchOperator: 'After', searchText: '%s'}`,
			since.UTC().Format("02-Jan-2006 15:04:05"),
		))
	}

	var resp recordsResponse
	if err := a.client.DoJSON(ctx, http.MethodGet, "/forms/employee/getRecords", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	// Zoho отдаёт result как список {recordId: [record]}.
	var out []dto.HREmployee
	for _, entry := range resp.Response.Result {
		for _, records := range entry {
			for _, rec := range records {
				out = append(out, a.normalizeEmployee(rec))
			}
		}
	}

	return out, nil
}

func (a *Adapter) normalizeEmployee(rec employeeRecord) dto.HREmployee {
	return dto.HREmployee{
		ID:             rec.EmployeeID,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		Email:          rec.EmailID,
		Phone:          rec.Mobile,
		JobTitle:       rec.Designation,
		Department:     rec.Department,
		EmploymentType: MapEmploymentType(rec.EmployeeType),
		Status:         MapStatus(rec.EmployeeStatus),
		HireDate:       adapter.OrNow(rec.DateOfJoining, "02-Jan-2006", "2006-01-02"),
		UpdatedAt:      adapter.OrNow(rec.ModifiedTime, "02-Jan-2006 15:04:05", time.RFC3339),
	}
}

// MapEmploymentType — вендорский тип занятости во внутренний enum.
func MapEmploymentType(raw string) dto.EmploymentType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "part time", "part_time", "part-time":
		return dto.EmploymentPartTime
	case "contract", "contractor", "consultant":
		return dto.EmploymentContractor
	case "intern", "trainee":
		return dto.EmploymentIntern
	default:
		return dto.EmploymentFullTime
	}
}

// MapStatus — вендорский статус сотрудника во внутренний enum.
func MapStatus(raw string) dto.EmployeeStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inactive":
		return dto.EmployeeInactive
	case "terminated", "resigned":
		return dto.EmployeeTerminated
	default:
		return dto.EmployeeActive
	}
}

type departmentRecord struct {
	ID       string `json:"Zoho_ID"`
	Name     string `json:"Department"`
	ParentID string `json:"Parent_Department_ID"`
	Lead     string `json:"Department_Lead"`
}

func (a *Adapter) GetDepartments(ctx context.Context) ([]dto.HRDepartment, error) {
	var resp struct {
		Response struct {
			Result []map[string][]departmentRecord `json:"result"`
		} `json:"response"`
	}
	if err := a.client.DoJSON(ctx, http.MethodGet, "/forms/department/getRecords", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	var out []dto.HRDepartment
	for _, entry := range resp.Response.Result {
		for _, records := range entry {
			for _, rec := range records {
				out = append(out, dto.HRDepartment{
					ID:       rec.ID,
					Name:     adapter.OrEmpty(rec.Name, "Unnamed"),
					ParentID: rec.ParentID,
					Head:     rec.Lead,
				})
			}
		}
	}

	return out, nil
}

type positionRecord struct {
	ID          string `json:"Zoho_ID"`
	PostingName string `json:"Job_Opening"`
	Department  string `json:"Department"`
	Location    string `json:"Location"`
	Status      string `json:"Job_Opening_Status"`
	OpenedDate  string `json:"Date_Opened"`
}

func (a *Adapter) GetJobPositions(ctx context.Context) ([]dto.HRJobPosition, error) {
	var resp struct {
		Response struct {
			Result []map[string][]positionRecord `json:"result"`
		} `json:"response"`
	}
	if err := a.client.DoJSON(ctx, http.MethodGet, "/forms/job_opening/getRecords", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.DoJSON: %w", err)
	}

	var out []dto.HRJobPosition
	for _, entry := range resp.Response.Result {
		for _, records := range entry {
			for _, rec := range records {
				out = append(out, dto.HRJobPosition{
					ID:         rec.ID,
					Title:      adapter.OrEmpty(rec.PostingName, "Untitled"),
					Department: rec.Department,
					Location:   rec.Location,
					Status:     MapPositionStatus(rec.Status),
					OpenedAt:   adapter.OrNow(rec.OpenedDate, "02-Jan-2006", "2006-01-02"),
				})
			}
		}
	}

	return out, nil
}

// MapPositionStatus — вендорский статус вакансии во внутренний enum.
func MapPositionStatus(raw string) dto.PositionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on-hold", "on hold", "onhold":
		return dto.PositionOnHold
	case "closed", "filled", "cancelled":
		return dto.PositionClosed
	default:
		return dto.PositionOpen
	}
}

func (a *Adapter) CreateEmployee(ctx context.Context, emp dto.HREmployee) (string, error) {
	query := employeeWriteQuery(emp)

	var resp struct {
		Response struct {
			Result struct {
				RecordID string `json:"recordId"`
			} `json:"result"`
		} `json:"response"`
	}
	if err := a.client.DoJSON(ctx, http.MethodPost, "/forms/json/employee/insertRecord", query, nil, &resp); err != nil {
		return "", fmt.Errorf("client.DoJSON: %w", err)
	}

	return resp.Response.Result.RecordID, nil
}

func (a *Adapter) UpdateEmployee(ctx context.Context, vendorID string, emp dto.HREmployee) error {
	query := employeeWriteQuery(emp)
	if len(query) == 0 {
		return nil
	}
	query.Set("recordId", vendorID)

	if err := a.client.DoJSON(ctx, http.MethodPost, "/forms/json/employee/updateRecord", query, nil, nil); err != nil {
		return fmt.Errorf("client.DoJSON: %w", err)
	}

	return nil
}

// employeeWriteQuery собирает inputData только из заполненных полей.
func employeeWriteQuery(emp dto.HREmployee) url.Values {
	fields := make(map[string]string)
	if emp.FirstName != "" {
		fields["FirstName"] = emp.FirstName
	}
	if emp.LastName != "" {
		fields["LastName"] = emp.LastName
	}
	if emp.Email != "" {
		fields["EmailID"] = emp.Email
	}
	if emp.Phone != "" {
		fields["Mobile"] = emp.Phone
	}
	if emp.JobTitle != "" {
		fields["Designation"] = emp.JobTitle
	}
	if emp.Department != "" {
		fields["Department"] = emp.Department
	}
	if len(fields) == 0 {
		return url.Values{}
	}

	raw, _ := json.Marshal(fields)

	return url.Values{"inputData": {string(raw)}}
}

// Запись вакансий через People API у Zoho не поддерживается (это Recruit).
func (a *Adapter) CreateJobPosition(_ context.Context, _ dto.HRJobPosition) (string, error) {
	return "", fmt.Errorf("zoho: create job position: %w", dto.ErrUnsupportedOperation)
}

func (a *Adapter) UpdateJobPosition(_ context.Context, _ string, _ dto.HRJobPosition) error {
	return fmt.Errorf("zoho: update job position: %w", dto.ErrUnsupportedOperation)
}

type webhookEnvelope struct {
	Operation string          `json:"operation"`
	Module    string          `json:"module"`
	EventTime string          `json:"event_time"`
	Data      json.RawMessage `json:"data"`
}

// HandleWebhook классифицирует по паре operation×module, fail-closed.
func (a *Adapter) HandleWebhook(raw []byte) (*dto.WebhookPayload, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	type pair struct{ operation, module string }

	known := map[pair]dto.WebhookEventType{
		{"insert", "employee"}:    dto.EventEmployeeCreated,
		{"update", "employee"}:    dto.EventEmployeeUpdated,
		{"terminate", "employee"}: dto.EventEmployeeTerminated,
		{"insert", "department"}:  dto.EventDepartmentCreated,
		{"update", "department"}:  dto.EventDepartmentUpdated,
		{"insert", "job_opening"}: dto.EventJobCreated,
		{"update", "job_opening"}: dto.EventJobUpdated,
		{"close", "job_opening"}:  dto.EventJobClosed,
	}

	eventType, ok := known[pair{strings.ToLower(env.Operation), strings.ToLower(env.Module)}]
	if !ok {
		return nil, fmt.Errorf("zoho: webhook %s on %s: %w", env.Operation, env.Module, dto.ErrUnsupportedWebhookEvent)
	}

	payload := &dto.WebhookPayload{
		SystemType: dto.SystemZoho,
		EventType:  eventType,
		Timestamp:  adapter.OrNow(env.EventTime),
		CompanyID:  a.companyID,
		Raw:        env.Data,
	}

	if len(env.Data) == 0 {
		return payload, nil
	}

	switch strings.ToLower(env.Module) {
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
	case "department":
		var rec departmentRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal data: %w", err)
		}
		payload.Department = &dto.HRDepartment{
			ID:       rec.ID,
			Name:     adapter.OrEmpty(rec.Name, "Unnamed"),
			ParentID: rec.ParentID,
			Head:     rec.Lead,
		}
		payload.Raw = nil
	case "job_opening":
		var rec positionRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("json.Unmarshal data: %w", err)
		}
		pos := dto.HRJobPosition{
			ID:         rec.ID,
			Title:      adapter.OrEmpty(rec.PostingName, "Untitled"),
			Department: rec.Department,
			Location:   rec.Location,
			Status:     MapPositionStatus(rec.Status),
			OpenedAt:   adapter.OrNow(rec.OpenedDate, "02-Jan-2006", "2006-01-02"),
		}
		if eventType == dto.EventJobClosed {
			pos.Status = dto.PositionClosed
		}
		payload.Job = &pos
		payload.Raw = nil
	}

	return payload, nil
}
