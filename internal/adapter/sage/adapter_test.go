package sage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()

	a, err := New(dto.HRSystemConfig{
		CompanyID:   "acme",
		SystemType:  dto.SystemSage,
		Credentials: json.RawMessage(`{"subdomain":"acme","api_key":"key-1"}`),
	}, time.Second, zerolog.Nop())
	require.NoError(t, err)

	return a
}

func TestHandleWebhook_TeamUpdated(t *testing.T) {
	a := newTestAdapter(t)

	raw := []byte(`{
		"action": "updated",
		"resource": "team",
		"data": {"id": 7, "name": "Engineering", "manager_id": 3}
	}`)

	payload, err := a.HandleWebhook(raw)

	require.NoError(t, err)
	assert.Equal(t, dto.SystemSage, payload.SystemType)
	assert.Equal(t, dto.EventDepartmentUpdated, payload.EventType)

	require.NotNil(t, payload.Department)
	assert.Equal(t, "7", payload.Department.ID)
	assert.Equal(t, "Engineering", payload.Department.Name)
	assert.Equal(t, "3", payload.Department.Head)
}

func TestHandleWebhook_TerminatedOverridesActiveFlag(t *testing.T) {
	a := newTestAdapter(t)

	raw := []byte(`{
		"action": "terminated",
		"resource": "employee",
		"data": {"id": 11, "email": "one@acme.test", "active": true}
	}`)

	payload, err := a.HandleWebhook(raw)

	require.NoError(t, err)
	require.NotNil(t, payload.Employee)
	assert.Equal(t, dto.EmployeeTerminated, payload.Employee.Status)
}

func TestHandleWebhook_UnknownPairFailsClosed(t *testing.T) {
	a := newTestAdapter(t)

	_, err := a.HandleWebhook([]byte(`{"action":"archived","resource":"employee"}`))

	require.ErrorIs(t, err, dto.ErrUnsupportedWebhookEvent)
}

func TestMapEmploymentType(t *testing.T) {
	assert.Equal(t, dto.EmploymentPartTime, MapEmploymentType("part_time"))
	assert.Equal(t, dto.EmploymentContractor, MapEmploymentType("freelance"))
	assert.Equal(t, dto.EmploymentIntern, MapEmploymentType("trainee"))
	assert.Equal(t, dto.EmploymentFullTime, MapEmploymentType("full_time"))
	assert.Equal(t, dto.EmploymentFullTime, MapEmploymentType(""))
}

func TestMapPositionStatus(t *testing.T) {
	assert.Equal(t, dto.PositionOnHold, MapPositionStatus("paused"))
	assert.Equal(t, dto.PositionClosed, MapPositionStatus("archived"))
	assert.Equal(t, dto.PositionOpen, MapPositionStatus("published"))
}

func TestPositionWritePayload_OnlyFilledFields(t *testing.T) {
	payload := positionWritePayload(dto.HRJobPosition{
		Title:  "QA Engineer",
		Status: dto.PositionOpen,
	})

	assert.Equal(t, map[string]string{
		"title":  "QA Engineer",
		"status": "open",
	}, payload)
}
