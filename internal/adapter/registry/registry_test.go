package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

func bambooConfig(id string) dto.HRSystemConfig {
	return dto.HRSystemConfig{
		ID:          id,
		CompanyID:   "acme",
		SystemType:  dto.SystemBambooHR,
		Credentials: json.RawMessage(`{"subdomain":"acme","api_key":"key-1"}`),
		IsActive:    true,
	}
}

func TestResolve_BuildsAndCaches(t *testing.T) {
	r := New(time.Second, zerolog.Nop())

	first, err := r.Resolve(bambooConfig("cfg-1"))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, dto.SystemBambooHR, first.SystemType())

	second, err := r.Resolve(bambooConfig("cfg-1"))
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestResolve_SeparateConfigsGetSeparateAdapters(t *testing.T) {
	r := New(time.Second, zerolog.Nop())

	a1, err := r.Resolve(bambooConfig("cfg-1"))
	require.NoError(t, err)
	a2, err := r.Resolve(bambooConfig("cfg-2"))
	require.NoError(t, err)

	assert.NotSame(t, a1, a2)
}

func TestInvalidate_ForcesRebuild(t *testing.T) {
	r := New(time.Second, zerolog.Nop())

	first, err := r.Resolve(bambooConfig("cfg-1"))
	require.NoError(t, err)

	r.Invalidate("cfg-1")

	second, err := r.Resolve(bambooConfig("cfg-1"))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestResolve_UnsupportedSystemType(t *testing.T) {
	r := New(time.Second, zerolog.Nop())

	_, err := r.Resolve(dto.HRSystemConfig{
		ID:          "cfg-x",
		SystemType:  "workday",
		Credentials: json.RawMessage(`{}`),
	})

	require.ErrorIs(t, err, dto.ErrUnsupportedSystemType)
}

func TestResolve_BrokenCredentialsAreNotCached(t *testing.T) {
	r := New(time.Second, zerolog.Nop())

	broken := dto.HRSystemConfig{
		ID:          "cfg-1",
		SystemType:  dto.SystemBambooHR,
		Credentials: json.RawMessage(`{"subdomain":"acme"}`),
	}
	_, err := r.Resolve(broken)
	require.Error(t, err)

	// После исправления credentials адаптер строится без Invalidate.
	fixed, err := r.Resolve(bambooConfig("cfg-1"))
	require.NoError(t, err)
	assert.NotNil(t, fixed)
}
