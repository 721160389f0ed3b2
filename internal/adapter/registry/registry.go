package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Artexxx/HR-Sync-Hub/internal/adapter"
	"github.com/Artexxx/HR-Sync-Hub/internal/adapter/bamboohr"
	"github.com/Artexxx/HR-Sync-Hub/internal/adapter/sage"
	"github.com/Artexxx/HR-Sync-Hub/internal/adapter/servicenow"
	"github.com/Artexxx/HR-Sync-Hub/internal/adapter/zoho"
	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// Registry — фабрика и кеш адаптеров: configId -> построенный адаптер.
// Построение через singleflight: два конкурентных триггера одного тенанта
// не соберут два экземпляра с дублирующейся настройкой соединения.
type Registry struct {
	timeout time.Duration
	log     zerolog.Logger

	mu    sync.RWMutex
	cache map[string]adapter.HRAdapter
	group singleflight.Group
}

func New(vendorTimeout time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		timeout: vendorTimeout,
		log:     log.With().Str("component", "AdapterRegistry").Logger(),
		cache:   make(map[string]adapter.HRAdapter),
	}
}

// Resolve возвращает адаптер для конфигурации, лениво строя его при
// первом обращении.
func (r *Registry) Resolve(cfg dto.HRSystemConfig) (adapter.HRAdapter, error) {
	r.mu.RLock()
	cached, ok := r.cache[cfg.ID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	built, err, _ := r.group.Do(cfg.ID, func() (any, error) {
		r.mu.RLock()
		cached, ok := r.cache[cfg.ID]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		a, err := r.build(cfg)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[cfg.ID] = a
		r.mu.Unlock()

		r.log.Info().
			Str("config_id", cfg.ID).
			Str("system_type", string(cfg.SystemType)).
			Msg("adapter built")

		return a, nil
	})
	if err != nil {
		return nil, err
	}

	return built.(adapter.HRAdapter), nil
}

// Invalidate выбрасывает адаптер из кеша (смена credentials, деактивация).
func (r *Registry) Invalidate(configID string) {
	r.mu.Lock()
	delete(r.cache, configID)
	r.mu.Unlock()
}

func (r *Registry) build(cfg dto.HRSystemConfig) (adapter.HRAdapter, error) {
	switch cfg.SystemType {
	case dto.SystemBambooHR:
		return bamboohr.New(cfg, r.timeout, r.log)
	case dto.SystemServiceNow:
		return servicenow.New(cfg, r.timeout, r.log)
	case dto.SystemSage:
		return sage.New(cfg, r.timeout, r.log)
	case dto.SystemZoho:
		return zoho.New(cfg, r.timeout, r.log)
	default:
		return nil, fmt.Errorf("system type %q: %w", cfg.SystemType, dto.ErrUnsupportedSystemType)
	}
}
