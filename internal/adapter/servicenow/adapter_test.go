package servicenow

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
		SystemType:  dto.SystemServiceNow,
		Credentials: json.RawMessage(`{"instance":"acme","username":"svc","password":"secret"}`),
	}, time.Second, zerolog.Nop())
	require.NoError(t, err)

	return a
}

func TestClassify(t *testing.T) {
	cases := []struct {
		event string
		table string
		want  dto.WebhookEventType
	}{
		{"inserted", tableUser, dto.EventEmployeeCreated},
		{"updated", tableUser, dto.EventEmployeeUpdated},
		{"deleted", tableUser, dto.EventEmployeeTerminated},
		{"inserted", tableDepartment, dto.EventDepartmentCreated},
		{"updated", tableDepartment, dto.EventDepartmentUpdated},
		{"inserted", tablePosition, dto.EventJobCreated},
		{"updated", tablePosition, dto.EventJobUpdated},
		{"closed", tablePosition, dto.EventJobClosed},
		// Регистр вендора не важен.
		{"Inserted", "Sys_User", dto.EventEmployeeCreated},
	}

	for _, tc := range cases {
		got, err := classify(tc.event, tc.table)
		require.NoError(t, err, "%s on %s", tc.event, tc.table)
		assert.Equal(t, tc.want, got)
	}
}

func TestClassify_UnknownPairsFailClosed(t *testing.T) {
	cases := []struct {
		event string
		table string
	}{
		{"archived", tableUser},
		{"inserted", "cmdb_ci_server"},
		{"closed", tableUser},
		{"", ""},
	}

	for _, tc := range cases {
		_, err := classify(tc.event, tc.table)
		require.ErrorIs(t, err, dto.ErrUnsupportedWebhookEvent, "%s on %s", tc.event, tc.table)
	}
}

func TestHandleWebhook_NormalizesUserRecord(t *testing.T) {
	a := newTestAdapter(t)

	raw := []byte(`{
		"event": "deleted",
		"table_name": "sys_user",
		"timestamp": "2026-05-01 10:00:00",
		"record": {
			"sys_id": "abc123",
			"first_name": "Анна",
			"email": "one@acme.test"
		}
	}`)

	payload, err := a.HandleWebhook(raw)

	require.NoError(t, err)
	assert.Equal(t, dto.EventEmployeeTerminated, payload.EventType)
	assert.Equal(t, "acme", payload.CompanyID)

	require.NotNil(t, payload.Employee)
	assert.Equal(t, "abc123", payload.Employee.ID)

	// Семантика события важнее поля записи: deleted — всегда terminated.
	assert.Equal(t, dto.EmployeeTerminated, payload.Employee.Status)
}

func TestHandleWebhook_NormalizesPositionRecord(t *testing.T) {
	a := newTestAdapter(t)

	raw := []byte(`{
		"event": "closed",
		"table_name": "sn_hr_core_position",
		"record": {
			"sys_id": "pos-7",
			"name": "Backend Engineer",
			"state": "open"
		}
	}`)

	payload, err := a.HandleWebhook(raw)

	require.NoError(t, err)
	assert.Equal(t, dto.EventJobClosed, payload.EventType)
	require.NotNil(t, payload.Job)
	assert.Equal(t, "pos-7", payload.Job.ID)
	assert.Equal(t, dto.PositionClosed, payload.Job.Status)
}

func TestHandleWebhook_RecordlessEventKeepsGoing(t *testing.T) {
	a := newTestAdapter(t)

	payload, err := a.HandleWebhook([]byte(`{"event":"updated","table_name":"sys_user"}`))

	require.NoError(t, err)
	assert.Equal(t, dto.EventEmployeeUpdated, payload.EventType)
	assert.Nil(t, payload.Employee)
}

func TestMapPositionState(t *testing.T) {
	assert.Equal(t, dto.PositionOpen, MapPositionState("open"))
	assert.Equal(t, dto.PositionOnHold, MapPositionState("On Hold"))
	assert.Equal(t, dto.PositionOnHold, MapPositionState("paused"))
	assert.Equal(t, dto.PositionClosed, MapPositionState("filled"))
	assert.Equal(t, dto.PositionClosed, MapPositionState("cancelled"))
	assert.Equal(t, dto.PositionOpen, MapPositionState(""))
}

func TestUserWritePayload_OnlyFilledFields(t *testing.T) {
	payload := userWritePayload(dto.HREmployee{
		LastName: "Фамилия",
		JobTitle: "QA Engineer",
	})

	assert.Equal(t, map[string]string{
		"last_name": "Фамилия",
		"title":     "QA Engineer",
	}, payload)

	assert.Empty(t, userWritePayload(dto.HREmployee{}))
}
