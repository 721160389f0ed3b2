package yamlenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type doc struct {
	Conn *Env[string] `yaml:"conn"`
	Port *Env[int]    `yaml:"port"`
}

func TestUnmarshal_Literal(t *testing.T) {
	var d doc
	require.NoError(t, yaml.Unmarshal([]byte("conn: localhost:5432\nport: 8080\n"), &d))

	assert.Equal(t, "localhost:5432", d.Conn.Value)
	assert.Equal(t, 8080, d.Port.Value)
}

func TestUnmarshal_EnvVar(t *testing.T) {
	t.Setenv("TEST_CONN", "pg:6432")

	var d doc
	require.NoError(t, yaml.Unmarshal([]byte("conn: ${TEST_CONN}\nport: 1\n"), &d))

	assert.Equal(t, "pg:6432", d.Conn.Value)
}

func TestUnmarshal_EnvVarWithDefault(t *testing.T) {
	var d doc
	require.NoError(t, yaml.Unmarshal([]byte("conn: ${UNSET_VAR_X:-fallback}\nport: ${UNSET_PORT_X:-9090}\n"), &d))

	assert.Equal(t, "fallback", d.Conn.Value)
	assert.Equal(t, 9090, d.Port.Value)
}

func TestUnmarshal_EnvVarOverridesDefault(t *testing.T) {
	t.Setenv("TEST_PORT", "7070")

	var d doc
	require.NoError(t, yaml.Unmarshal([]byte("conn: x\nport: ${TEST_PORT:-9090}\n"), &d))

	assert.Equal(t, 7070, d.Port.Value)
}

func TestUnmarshal_MissingEnvWithoutDefault(t *testing.T) {
	var d doc
	err := yaml.Unmarshal([]byte("conn: ${DEFINITELY_NOT_SET_ANYWHERE}\nport: 1\n"), &d)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFINITELY_NOT_SET_ANYWHERE")
}

func TestUnmarshal_EmptyDefaultIsAllowed(t *testing.T) {
	var d doc
	require.NoError(t, yaml.Unmarshal([]byte("conn: ${UNSET_VAR_Y:-}\nport: 1\n"), &d))

	assert.Empty(t, d.Conn.Value)
}

func TestUnmarshal_BadInt(t *testing.T) {
	var d doc
	err := yaml.Unmarshal([]byte("conn: x\nport: not-a-number\n"), &d)

	require.Error(t, err)
}
