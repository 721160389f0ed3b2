package config

import (
	"github.com/Artexxx/HR-Sync-Hub/library/pg"
	"github.com/Artexxx/HR-Sync-Hub/library/yamlenv"
)

type Config struct {
	Postgres pg.PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig       `yaml:"kafka"`
	SyncAPI  ApiConfig         `yaml:"syncAPI"`
	Sync     SyncConfig        `yaml:"sync"`
}

type KafkaConfig struct {
	Bootstrap        *yamlenv.Env[string] `yaml:"bootstrap"`
	ProducerClientID *yamlenv.Env[string] `yaml:"producer_client_id"`
	Topics           struct {
		SyncResults *yamlenv.Env[string] `yaml:"sync_results"`
		HREvents    *yamlenv.Env[string] `yaml:"hr_events"`
	} `yaml:"topics"`
}

type ApiConfig struct {
	Port *yamlenv.Env[int] `yaml:"port"`
}

// SyncConfig — параметры оркестратора и планировщика.
// Schedule — cron-выражение; пустое значение выключает периодический запуск.
type SyncConfig struct {
	WorkerLimit      *yamlenv.Env[int]    `yaml:"worker_limit"`
	VendorTimeoutSec *yamlenv.Env[int]    `yaml:"vendor_timeout_sec"`
	Schedule         *yamlenv.Env[string] `yaml:"schedule"`
}
