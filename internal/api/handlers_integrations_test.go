package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

func validRequest() integrationRequest {
	return integrationRequest{
		ID:          "cfg-1",
		CompanyID:   "acme",
		SystemType:  dto.SystemBambooHR,
		Credentials: json.RawMessage(`{"subdomain":"acme","api_key":"k"}`),
		SyncSettings: dto.SyncSettings{
			Direction: dto.SyncImportOnly,
			Entities:  dto.SyncEntities{Employees: true},
		},
	}
}

func TestIntegrationRequestValidate_OK(t *testing.T) {
	require.NoError(t, validRequest().validate())
}

func TestIntegrationRequestValidate_MissingCompany(t *testing.T) {
	req := validRequest()
	req.CompanyID = "  "

	err := req.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "company_id")
}

func TestIntegrationRequestValidate_UnknownSystemType(t *testing.T) {
	req := validRequest()
	req.SystemType = "workday"

	require.Error(t, req.validate())
}

func TestIntegrationRequestValidate_MissingCredentials(t *testing.T) {
	req := validRequest()
	req.Credentials = nil

	err := req.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestIntegrationRequestValidate_UnknownDirection(t *testing.T) {
	req := validRequest()
	req.SyncSettings.Direction = "push_pull"

	require.Error(t, req.validate())
}

func TestIntegrationRequestValidate_BrokenMappingRule(t *testing.T) {
	req := validRequest()
	req.FieldMappings = []dto.FieldMapping{{SourceField: "workEmail"}}

	require.Error(t, req.validate())
}
