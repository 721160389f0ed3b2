package zoho

import (
	"context"
	"encoding/json"
	"net/url"
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
		SystemType:  dto.SystemZoho,
		Credentials: json.RawMessage(`{"access_token":"tok-1","domain":"zoho.eu"}`),
	}, time.Second, zerolog.Nop())
	require.NoError(t, err)

	return a
}

func TestNew_RequiresAccessToken(t *testing.T) {
	_, err := New(dto.HRSystemConfig{
		Credentials: json.RawMessage(`{"domain":"zoho.eu"}`),
	}, time.Second, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_token")
}

func TestJobPositionWritesUnsupported(t *testing.T) {
	a := newTestAdapter(t)

	_, err := a.CreateJobPosition(context.Background(), dto.HRJobPosition{Title: "QA"})
	require.ErrorIs(t, err, dto.ErrUnsupportedOperation)

	err = a.UpdateJobPosition(context.Background(), "p1", dto.HRJobPosition{Title: "QA"})
	require.ErrorIs(t, err, dto.ErrUnsupportedOperation)
}

func TestEmployeeWriteQuery_OnlyFilledFields(t *testing.T) {
	query := employeeWriteQuery(dto.HREmployee{
		FirstName: "Анна",
		Email:     "one@acme.test",
	})

	var fields map[string]string
	require.NoError(t, json.Unmarshal([]byte(query.Get("inputData")), &fields))
	assert.Equal(t, map[string]string{
		"FirstName": "Анна",
		"EmailID":   "one@acme.test",
	}, fields)

	assert.Equal(t, url.Values{}, employeeWriteQuery(dto.HREmployee{}))
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, dto.EmployeeActive, MapStatus("Active"))
	assert.Equal(t, dto.EmployeeInactive, MapStatus("Inactive"))
	assert.Equal(t, dto.EmployeeTerminated, MapStatus("Resigned"))
	assert.Equal(t, dto.EmployeeActive, MapStatus(""))
}

func TestHandleWebhook_EmployeeInsert(t *testing.T) {
	a := newTestAdapter(t)

	raw := []byte(`{
		"operation": "insert",
		"module": "employee",
		"data": {
			"EmployeeID": "z-1",
			"FirstName": "Анна",
			"EmailID": "one@acme.test",
			"Employeestatus": "Active"
		}
	}`)

	payload, err := a.HandleWebhook(raw)

	require.NoError(t, err)
	assert.Equal(t, dto.SystemZoho, payload.SystemType)
	assert.Equal(t, dto.EventEmployeeCreated, payload.EventType)
	require.NotNil(t, payload.Employee)
	assert.Equal(t, "z-1", payload.Employee.ID)
	assert.Equal(t, dto.EmployeeActive, payload.Employee.Status)
}

func TestHandleWebhook_JobOpeningClose(t *testing.T) {
	a := newTestAdapter(t)

	raw := []byte(`{
		"operation": "close",
		"module": "job_opening",
		"data": {"Zoho_ID": "j-5", "Job_Opening": "Recruiter", "Job_Opening_Status": "In-progress"}
	}`)

	payload, err := a.HandleWebhook(raw)

	require.NoError(t, err)
	assert.Equal(t, dto.EventJobClosed, payload.EventType)
	require.NotNil(t, payload.Job)
	assert.Equal(t, "j-5", payload.Job.ID)
	assert.Equal(t, dto.PositionClosed, payload.Job.Status)
}

func TestHandleWebhook_UnknownPairFailsClosed(t *testing.T) {
	a := newTestAdapter(t)

	_, err := a.HandleWebhook([]byte(`{"operation":"approve","module":"leave"}`))

	require.ErrorIs(t, err, dto.ErrUnsupportedWebhookEvent)
}
