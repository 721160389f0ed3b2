package bamboohr

import (
	"context"
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
		SystemType:  dto.SystemBambooHR,
		Credentials: json.RawMessage(`{"subdomain":"acme","api_key":"key-1"}`),
	}, time.Second, zerolog.Nop())
	require.NoError(t, err)

	return a
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(dto.HRSystemConfig{
		Credentials: json.RawMessage(`{"subdomain":"acme"}`),
	}, time.Second, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestMapEmploymentType(t *testing.T) {
	cases := map[string]dto.EmploymentType{
		"Full-Time":  dto.EmploymentFullTime,
		"part-time":  dto.EmploymentPartTime,
		"Part Time":  dto.EmploymentPartTime,
		"Contractor": dto.EmploymentContractor,
		"contract":   dto.EmploymentContractor,
		"Intern":     dto.EmploymentIntern,
		"internship": dto.EmploymentIntern,
		"":           dto.EmploymentFullTime,
		"что-то ещё": dto.EmploymentFullTime,
	}

	for raw, want := range cases {
		assert.Equal(t, want, MapEmploymentType(raw), "raw=%q", raw)
	}
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, dto.EmployeeActive, MapStatus("Active"))
	assert.Equal(t, dto.EmployeeInactive, MapStatus("inactive"))
	assert.Equal(t, dto.EmployeeTerminated, MapStatus("Terminated"))
	assert.Equal(t, dto.EmployeeActive, MapStatus(""))

	// Маппер идемпотентен: уже внутреннее значение проходит без изменений.
	assert.Equal(t, dto.EmployeeTerminated, MapStatus(string(dto.EmployeeTerminated)))
}

func TestJobPositionWritesUnsupported(t *testing.T) {
	a := newTestAdapter(t)

	_, err := a.CreateJobPosition(context.Background(), dto.HRJobPosition{Title: "QA"})
	require.ErrorIs(t, err, dto.ErrUnsupportedOperation)

	err = a.UpdateJobPosition(context.Background(), "p1", dto.HRJobPosition{Title: "QA"})
	require.ErrorIs(t, err, dto.ErrUnsupportedOperation)
}

func TestEmployeeWritePayload_OnlyFilledFields(t *testing.T) {
	payload := employeeWritePayload(dto.HREmployee{
		FirstName: "Анна",
		Email:     "one@acme.test",
	})

	assert.Equal(t, map[string]string{
		"firstName": "Анна",
		"workEmail": "one@acme.test",
	}, payload)

	assert.Empty(t, employeeWritePayload(dto.HREmployee{}))
}

func TestHandleWebhook_KnownTypes(t *testing.T) {
	a := newTestAdapter(t)

	raw := []byte(`{
		"type": "employee_updated",
		"timestamp": "2026-05-01T10:00:00Z",
		"employee": {
			"id": 123,
			"firstName": "Анна",
			"workEmail": "one@acme.test",
			"status": "Active"
		}
	}`)

	payload, err := a.HandleWebhook(raw)

	require.NoError(t, err)
	assert.Equal(t, dto.SystemBambooHR, payload.SystemType)
	assert.Equal(t, dto.EventEmployeeUpdated, payload.EventType)
	assert.Equal(t, "acme", payload.CompanyID)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), payload.Timestamp)

	require.NotNil(t, payload.Employee)
	assert.Equal(t, "123", payload.Employee.ID)
	assert.Equal(t, "one@acme.test", payload.Employee.Email)
	assert.Equal(t, dto.EmployeeActive, payload.Employee.Status)
}

func TestHandleWebhook_UnknownTypeFailsClosed(t *testing.T) {
	a := newTestAdapter(t)

	_, err := a.HandleWebhook([]byte(`{"type":"benefits_enrolled"}`))

	require.ErrorIs(t, err, dto.ErrUnsupportedWebhookEvent)
}

func TestHandleWebhook_MalformedJSON(t *testing.T) {
	a := newTestAdapter(t)

	_, err := a.HandleWebhook([]byte(`{broken`))

	require.Error(t, err)
	assert.NotErrorIs(t, err, dto.ErrUnsupportedWebhookEvent)
}
