package api

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// @title           HR Sync Hub — Integration & Synchronization Engine
// @version         1.0
// @description     Синхронизация с внешними HR-системами: адаптеры вендоров, прогоны синхронизации с per-record учётом, нормализация вебхуков, журнал прогонов.
//
//@license.name  MIT
// @license.url   https://opensource.org/license/mit
//
// @BasePath  /
// @schemes   http
// @accept    json
// @produce   json

type SyncOrchestrator interface {
	PerformSync(ctx context.Context, configID string, entities []dto.EntityType) (*dto.SyncResult, error)
}

type WebhookProcessor interface {
	Handle(ctx context.Context, configID string, raw []byte) (*dto.WebhookPayload, error)
}

type IntegrationRepository interface {
	Create(ctx context.Context, cfg dto.HRSystemConfig) error
	GetByID(ctx context.Context, id string) (*dto.HRSystemConfig, error)
	ListActive(ctx context.Context) ([]dto.HRSystemConfig, error)
	Update(ctx context.Context, cfg dto.HRSystemConfig) error
	Deactivate(ctx context.Context, id string) error
	ListRuns(ctx context.Context, configID string, limit int) ([]dto.SyncRun, error)
}

type AdapterResolver interface {
	Resolve(cfg dto.HRSystemConfig) (adapter.HRAdapter, error)
	Invalidate(configID string)
}

type ServiceDeps struct {
	Port int

	Orchestrator SyncOrchestrator
	Webhooks     WebhookProcessor
	Integrations IntegrationRepository
	Adapters     AdapterResolver
}

type Service struct {
	r      *router.Router
	server *fasthttp.Server
	port   int

	orchestrator SyncOrchestrator
	webhooks     WebhookProcessor
	integrations IntegrationRepository
	adapters     AdapterResolver
}

func NewService(d ServiceDeps) *Service {
	rt := router.New()

	s := &Service{
		r:            rt,
		port:         d.Port,
		orchestrator: d.Orchestrator,
		webhooks:     d.Webhooks,
		integrations: d.Integrations,
		adapters:     d.Adapters,
	}

	s.mountRoutes()

	s.server = &fasthttp.Server{
		Handler:            RecoveryMiddleware(LoggingMiddleware(CORS(s.r.Handler))),
		Name:               "hr-sync-hub",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       120 * time.Second, // синхронный прогон может идти долго
		MaxRequestBodySize: 2 << 20,           // 2 MiB
	}

	return s
}

func (s *Service) Start(ctx context.Context) error {
	log.Info().Int("port", s.port).Msg("Starting sync engine API")

	emergencyShutdown := make(chan error)
	go func() {
		err := s.server.ListenAndServe(fmt.Sprintf(":%d", s.port))
		emergencyShutdown <- err
	}()

	select {
	case <-ctx.Done():
		return s.server.Shutdown()
	case e := <-emergencyShutdown:
		return e
	}
}

func (s *Service) mountRoutes() {
	// Sync
	s.r.POST("/sync/{config_id}", s.triggerSync)

	// Webhook ingress
	s.r.POST("/webhooks/{config_id}", s.receiveWebhook)

	// Integrations
	s.r.GET("/integrations", s.listIntegrations)
	s.r.POST("/integrations", s.createIntegration)
	s.r.GET("/integrations/{config_id}", s.getIntegration)
	s.r.PUT("/integrations/{config_id}", s.updateIntegration)
	s.r.DELETE("/integrations/{config_id}", s.deactivateIntegration)
	s.r.POST("/integrations/{config_id}/validate", s.validateIntegration)
	s.r.GET("/integrations/{config_id}/runs", s.listRuns)

	// Health
	s.r.GET("/health", s.healthHandler)
}
