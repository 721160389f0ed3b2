package pg

import (
	"github.com/Artexxx/HR-Sync-Hub/library/yamlenv"
)

type PostgresConfig struct {
	Conn *yamlenv.Env[string] `yaml:"conn"`
}
