package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

type stubConfigs struct {
	configs []dto.HRSystemConfig
	err     error
}

func (s *stubConfigs) ListActive(context.Context) ([]dto.HRSystemConfig, error) {
	return s.configs, s.err
}

type stubOrchestrator struct {
	synced []string
	err    error
}

func (s *stubOrchestrator) PerformSync(_ context.Context, configID string, _ []dto.EntityType) (*dto.SyncResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.synced = append(s.synced, configID)
	return &dto.SyncResult{Success: true, SyncID: "run-" + configID}, nil
}

func TestTick_SyncsEveryActiveIntegration(t *testing.T) {
	configs := &stubConfigs{configs: []dto.HRSystemConfig{
		{ID: "cfg-1", SystemType: dto.SystemBambooHR},
		{ID: "cfg-2", SystemType: dto.SystemZoho},
	}}
	orch := &stubOrchestrator{}

	s := New("@hourly", configs, orch, zerolog.Nop())
	s.tick(context.Background())

	assert.Equal(t, []string{"cfg-1", "cfg-2"}, orch.synced)
}

func TestTick_ListFailureSkipsRun(t *testing.T) {
	configs := &stubConfigs{err: errors.New("pg down")}
	orch := &stubOrchestrator{}

	s := New("@hourly", configs, orch, zerolog.Nop())
	s.tick(context.Background())

	assert.Empty(t, orch.synced)
}

func TestTick_StopsOnCancelledContext(t *testing.T) {
	configs := &stubConfigs{configs: []dto.HRSystemConfig{{ID: "cfg-1"}}}
	orch := &stubOrchestrator{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New("@hourly", configs, orch, zerolog.Nop())
	s.tick(ctx)

	assert.Empty(t, orch.synced)
}

func TestStart_EmptyScheduleWaitsForShutdown(t *testing.T) {
	s := New("", &stubConfigs{}, &stubOrchestrator{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Start(ctx))
}

func TestStart_BadCronExpression(t *testing.T) {
	s := New("not a cron spec", &stubConfigs{}, &stubOrchestrator{}, zerolog.Nop())

	err := s.Start(context.Background())

	require.Error(t, err)
}
