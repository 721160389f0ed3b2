package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

type stubAdapter struct {
	payload *dto.WebhookPayload
	err     error
}

func (s *stubAdapter) SystemType() dto.SystemType              { return dto.SystemServiceNow }
func (s *stubAdapter) ValidateConnection(context.Context) bool { return true }

func (s *stubAdapter) HandleWebhook([]byte) (*dto.WebhookPayload, error) {
	return s.payload, s.err
}

func (s *stubAdapter) GetEmployees(context.Context, *time.Time) ([]dto.HREmployee, error) {
	return nil, nil
}
func (s *stubAdapter) GetDepartments(context.Context) ([]dto.HRDepartment, error) { return nil, nil }
func (s *stubAdapter) GetJobPositions(context.Context) ([]dto.HRJobPosition, error) {
	return nil, nil
}
func (s *stubAdapter) CreateEmployee(context.Context, dto.HREmployee) (string, error) {
	return "", dto.ErrUnsupportedOperation
}
func (s *stubAdapter) UpdateEmployee(context.Context, string, dto.HREmployee) error {
	return dto.ErrUnsupportedOperation
}
func (s *stubAdapter) CreateJobPosition(context.Context, dto.HRJobPosition) (string, error) {
	return "", dto.ErrUnsupportedOperation
}
func (s *stubAdapter) UpdateJobPosition(context.Context, string, dto.HRJobPosition) error {
	return dto.ErrUnsupportedOperation
}

type stubConfigs struct {
	cfg *dto.HRSystemConfig
}

func (s *stubConfigs) GetByID(_ context.Context, id string) (*dto.HRSystemConfig, error) {
	if s.cfg == nil || s.cfg.ID != id {
		return nil, dto.ErrNotFound
	}
	clone := *s.cfg
	return &clone, nil
}

type stubUsers struct {
	upserted   []dto.User
	terminated []string
	upsertErr  error
}

func (s *stubUsers) UpsertByVendorID(_ context.Context, u dto.User) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, u)
	return nil
}

func (s *stubUsers) TerminateByVendorID(_ context.Context, vendorID string) error {
	s.terminated = append(s.terminated, vendorID)
	return nil
}

type stubDepartments struct {
	upserted []dto.Department
}

func (s *stubDepartments) UpsertByVendorID(_ context.Context, d dto.Department) error {
	s.upserted = append(s.upserted, d)
	return nil
}

type stubJobs struct {
	upserted []dto.Job
	closed   []string
}

func (s *stubJobs) UpsertByVendorID(_ context.Context, j dto.Job) error {
	s.upserted = append(s.upserted, j)
	return nil
}

func (s *stubJobs) CloseByVendorID(_ context.Context, vendorID string) error {
	s.closed = append(s.closed, vendorID)
	return nil
}

type stubResolver struct {
	adapter adapter.HRAdapter
}

func (s *stubResolver) Resolve(dto.HRSystemConfig) (adapter.HRAdapter, error) {
	return s.adapter, nil
}

type stubNotifier struct {
	processed []dto.WebhookPayload
}

func (s *stubNotifier) WebhookProcessed(_ context.Context, _ dto.HRSystemConfig, payload dto.WebhookPayload) error {
	s.processed = append(s.processed, payload)
	return nil
}

func activeConfig() *dto.HRSystemConfig {
	return &dto.HRSystemConfig{
		ID:         "cfg-1",
		CompanyID:  "acme",
		SystemType: dto.SystemServiceNow,
		IsActive:   true,
	}
}

func newTestProcessor(cfg *dto.HRSystemConfig, a adapter.HRAdapter, users *stubUsers, depts *stubDepartments, jobs *stubJobs, n Notifier) *Processor {
	return NewProcessor(ProcessorDeps{
		Configs:     &stubConfigs{cfg: cfg},
		Users:       users,
		Departments: depts,
		Jobs:        jobs,
		Adapters:    &stubResolver{adapter: a},
		Notifier:    n,
	}, zerolog.Nop())
}

func TestHandle_EmployeeCreatedUpsertsUser(t *testing.T) {
	a := &stubAdapter{payload: &dto.WebhookPayload{
		SystemType: dto.SystemServiceNow,
		EventType:  dto.EventEmployeeCreated,
		Employee: &dto.HREmployee{
			ID:        "sys-1",
			FirstName: "Анна",
			Email:     "one@acme.test",
			Phone:     "+7 900",
			Status:    dto.EmployeeActive,
		},
	}}
	users := &stubUsers{}
	notifier := &stubNotifier{}

	p := newTestProcessor(activeConfig(), a, users, &stubDepartments{}, &stubJobs{}, notifier)

	payload, err := p.Handle(context.Background(), "cfg-1", []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, dto.EventEmployeeCreated, payload.EventType)

	require.Len(t, users.upserted, 1)
	require.NotNil(t, users.upserted[0].VendorID)
	assert.Equal(t, "sys-1", *users.upserted[0].VendorID)
	require.NotNil(t, users.upserted[0].Phone)
	assert.Equal(t, "+7 900", *users.upserted[0].Phone)

	require.Len(t, notifier.processed, 1)
	assert.Equal(t, dto.EventEmployeeCreated, notifier.processed[0].EventType)
}

func TestHandle_EmployeeTerminated(t *testing.T) {
	a := &stubAdapter{payload: &dto.WebhookPayload{
		EventType: dto.EventEmployeeTerminated,
		Employee:  &dto.HREmployee{ID: "sys-9"},
	}}
	users := &stubUsers{}

	p := newTestProcessor(activeConfig(), a, users, &stubDepartments{}, &stubJobs{}, nil)

	_, err := p.Handle(context.Background(), "cfg-1", []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"sys-9"}, users.terminated)
	assert.Empty(t, users.upserted)
}

func TestHandle_DepartmentUpdated(t *testing.T) {
	a := &stubAdapter{payload: &dto.WebhookPayload{
		EventType:  dto.EventDepartmentUpdated,
		Department: &dto.HRDepartment{ID: "dep-1", Name: "Engineering", ParentID: "dep-0"},
	}}
	depts := &stubDepartments{}

	p := newTestProcessor(activeConfig(), a, &stubUsers{}, depts, &stubJobs{}, nil)

	_, err := p.Handle(context.Background(), "cfg-1", []byte(`{}`))

	require.NoError(t, err)
	require.Len(t, depts.upserted, 1)
	assert.Equal(t, "dep-1", depts.upserted[0].VendorID)
	require.NotNil(t, depts.upserted[0].ParentID)
	assert.Equal(t, "dep-0", *depts.upserted[0].ParentID)
}

func TestHandle_JobClosed(t *testing.T) {
	a := &stubAdapter{payload: &dto.WebhookPayload{
		EventType: dto.EventJobClosed,
		Job:       &dto.HRJobPosition{ID: "pos-3", Title: "QA", Status: dto.PositionClosed},
	}}
	jobs := &stubJobs{}

	p := newTestProcessor(activeConfig(), a, &stubUsers{}, &stubDepartments{}, jobs, nil)

	_, err := p.Handle(context.Background(), "cfg-1", []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"pos-3"}, jobs.closed)
	assert.Empty(t, jobs.upserted)
}

func TestHandle_UnknownEventFailsClosed(t *testing.T) {
	a := &stubAdapter{err: dto.ErrUnsupportedWebhookEvent}

	p := newTestProcessor(activeConfig(), a, &stubUsers{}, &stubDepartments{}, &stubJobs{}, nil)

	_, err := p.Handle(context.Background(), "cfg-1", []byte(`{"event":"lunch.ordered"}`))

	require.ErrorIs(t, err, dto.ErrUnsupportedWebhookEvent)
}

func TestHandle_MissingEmployeePayload(t *testing.T) {
	a := &stubAdapter{payload: &dto.WebhookPayload{EventType: dto.EventEmployeeCreated}}

	p := newTestProcessor(activeConfig(), a, &stubUsers{}, &stubDepartments{}, &stubJobs{}, nil)

	_, err := p.Handle(context.Background(), "cfg-1", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "without employee payload")
}

func TestHandle_InactiveConfig(t *testing.T) {
	cfg := activeConfig()
	cfg.IsActive = false

	p := newTestProcessor(cfg, &stubAdapter{}, &stubUsers{}, &stubDepartments{}, &stubJobs{}, nil)

	_, err := p.Handle(context.Background(), "cfg-1", []byte(`{}`))

	require.ErrorIs(t, err, dto.ErrConfigInactive)
}

func TestHandle_ApplyFailurePropagates(t *testing.T) {
	a := &stubAdapter{payload: &dto.WebhookPayload{
		EventType: dto.EventEmployeeUpdated,
		Employee:  &dto.HREmployee{ID: "sys-1", Email: "one@acme.test"},
	}}
	users := &stubUsers{upsertErr: errors.New("pg down")}

	p := newTestProcessor(activeConfig(), a, users, &stubDepartments{}, &stubJobs{}, nil)

	_, err := p.Handle(context.Background(), "cfg-1", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pg down")
}
