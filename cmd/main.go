package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter/registry"
	"github.com/Artexxx/HR-Sync-Hub/internal/api"
	"github.com/Artexxx/HR-Sync-Hub/internal/config"
	"github.com/Artexxx/HR-Sync-Hub/internal/notify"
	"github.com/Artexxx/HR-Sync-Hub/internal/repository/department"
	"github.com/Artexxx/HR-Sync-Hub/internal/repository/integration"
	"github.com/Artexxx/HR-Sync-Hub/internal/repository/job"
	"github.com/Artexxx/HR-Sync-Hub/internal/repository/user"
	"github.com/Artexxx/HR-Sync-Hub/internal/scheduler"
	syncer "github.com/Artexxx/HR-Sync-Hub/internal/sync"
	"github.com/Artexxx/HR-Sync-Hub/internal/webhook"
	"github.com/Artexxx/HR-Sync-Hub/library/pg"
	"github.com/Artexxx/HR-Sync-Hub/library/yamlreader"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	cfg := MustNewConfig(parseFlags())

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	log.Info().Msgf("pg=%+v", cfg.Postgres.Conn.Value)
	log.Info().Msgf("kafka=%+v", cfg.Kafka.Bootstrap.Value)

	pgClient, err := pg.NewPG(rootCtx, cfg.Postgres.Conn.Value, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres init failed")
	}
	defer pgClient.Close()

	integrationRepo := integration.NewRepository(pgClient.Pool())
	userRepo := user.NewRepository(pgClient.Pool())
	departmentRepo := department.NewRepository(pgClient.Pool())
	jobRepo := job.NewRepository(pgClient.Pool())

	notifier, err := initNotifier(cfg.Kafka)
	if err != nil {
		log.Fatal().Err(err).Msg("kafka producer init failed")
	}
	defer func() { _ = notifier.Close() }()

	adapters := registry.New(
		time.Duration(cfg.Sync.VendorTimeoutSec.Value)*time.Second,
		log.Logger,
	)

	orchestrator := syncer.NewOrchestrator(syncer.OrchestratorDeps{
		Configs:     integrationRepo,
		Users:       userRepo,
		Departments: departmentRepo,
		Jobs:        jobRepo,
		Adapters:    adapters,
		Notifier:    notifier,
		WorkerLimit: cfg.Sync.WorkerLimit.Value,
	}, log.Logger)

	webhookProcessor := webhook.NewProcessor(webhook.ProcessorDeps{
		Configs:     integrationRepo,
		Users:       userRepo,
		Departments: departmentRepo,
		Jobs:        jobRepo,
		Adapters:    adapters,
		Notifier:    notifier,
	}, log.Logger)

	apiService := api.NewService(api.ServiceDeps{
		Port:         cfg.SyncAPI.Port.Value,
		Orchestrator: orchestrator,
		Webhooks:     webhookProcessor,
		Integrations: integrationRepo,
		Adapters:     adapters,
	})

	syncScheduler := scheduler.New(
		cfg.Sync.Schedule.Value,
		integrationRepo,
		orchestrator,
		log.Logger,
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Msg("запуск HTTP API")
		if err := apiService.Start(gctx); err != nil {

			log.Error().Err(err).Msg("HTTP API завершился с ошибкой")

			return err
		}

		log.Info().Msg("HTTP API остановлен")

		return nil
	})

	// Периодическая синхронизация
	group.Go(func() error {
		log.Info().Msg("запуск планировщика синхронизации")

		if err := syncScheduler.Start(gctx); err != nil {
			log.Error().Err(err).Msg("планировщик завершился с ошибкой")

			return err
		}

		log.Info().Msg("планировщик остановлен")

		return nil
	})

	// упрощённая остановка (без таймаута)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = group.Wait()
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("signal received, graceful shutdown...")
		<-done
		log.Info().Msg("all services stopped")
	case <-done:
		log.Info().Msg("all services stopped")
	}
}

func initNotifier(kafkaConfig config.KafkaConfig) (*notify.Notifier, error) {
	sCfg := sarama.NewConfig()
	sCfg.Version = sarama.V3_3_2_0
	sCfg.ClientID = kafkaConfig.ProducerClientID.Value
	sCfg.Producer.Return.Successes = true
	sCfg.Producer.RequiredAcks = sarama.WaitForAll
	sCfg.Producer.Idempotent = true
	sCfg.Net.MaxOpenRequests = 1
	sCfg.Producer.Retry.Max = 5
	sCfg.Producer.Retry.Backoff = 200 * time.Millisecond

	sp, err := sarama.NewSyncProducer([]string{kafkaConfig.Bootstrap.Value}, sCfg)
	if err != nil {
		return nil, err
	}

	notifier := notify.NewNotifier(
		sp,
		notify.Config{
			TopicSyncResults: kafkaConfig.Topics.SyncResults.Value,
			TopicHREvents:    kafkaConfig.Topics.HREvents.Value,
			Source:           "hr-sync-hub",
		},
		log.Logger,
	)

	return notifier, nil
}

func MustNewConfig(path string) *config.Config {
	cfg, err := yamlreader.NewConfig[config.Config](path)

	if err != nil {
		log.Fatal().Str("path", path).Err(err).Msg("ошибка чтения конфигурации приложения")
		return nil
	}

	return cfg
}

func parseFlags() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	godotenv.Load(".env")

	if configPath == "" {
		configPath = "config/application-local.yaml"
	}
	return configPath
}
