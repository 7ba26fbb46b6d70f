package worker

import (
	"context"
	"errors"
	"time"

	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	sessionPurgeInterval  = time.Minute
	defaultRefreshSeconds = 300
)

// Service servicio de cola asíncrona
// Además del servidor de tareas corre dos lazos: el refresco periódico
// del historial de las sesiones activas y la purga de sesiones vencidas
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService crea el servicio de cola
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name nombre del servicio
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start arranca el servicio
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.SessionService != nil {
		go s.runHistoryRefreshLoop(ctx)
		go s.runSessionPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop detiene el servicio
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) refreshInterval() time.Duration {
	seconds := defaultRefreshSeconds
	if s.consumer != nil && s.consumer.Config != nil && s.consumer.Config.History.RefreshIntervalSeconds > 0 {
		seconds = s.consumer.Config.History.RefreshIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (s *Service) runHistoryRefreshLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.SessionService == nil || s.consumer.QueueClient == nil {
		return
	}
	enqueueAll := func() {
		sessions, err := s.consumer.SessionService.ActiveSessions()
		if err != nil {
			logger.Warnw("worker_history_refresh_list_failed", "error", err)
			return
		}
		for i := range sessions {
			payload := queue.HistoryRefreshPayload{SessionID: sessions[i].ID}
			if err := s.consumer.QueueClient.EnqueueHistoryRefresh(payload); err != nil {
				logger.Warnw("worker_history_refresh_enqueue_failed", "session_id", sessions[i].ID, "error", err)
			}
		}
	}

	ticker := time.NewTicker(s.refreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueueAll()
		}
	}
}

func (s *Service) runSessionPurgeLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.SessionService == nil {
		return
	}
	runOnce := func() {
		if _, err := s.consumer.SessionService.PurgeExpired(ctx); err != nil {
			logger.Warnw("worker_session_purge_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
