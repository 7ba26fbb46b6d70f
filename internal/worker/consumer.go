package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/provider"
	"github.com/entregas-next/internal/queue"
	"github.com/entregas-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer consumidor de tareas asíncronas
type Consumer struct {
	*provider.Container
}

// NewConsumer crea el consumidor
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registra los manejadores de tareas
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskHistoryRefresh, c.handleHistoryRefresh)
}

func (c *Consumer) handleHistoryRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_history_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.HistoryRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_history_refresh_unmarshal_failed", "error", err)
		return err
	}
	if payload.SessionID == "" {
		logger.Debugw("worker_history_refresh_skip_invalid_payload")
		return nil
	}

	session, err := c.SessionService.GetSession(payload.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			logger.Debugw("worker_history_refresh_skip_session_gone", "session_id", payload.SessionID)
			return nil
		}
		logger.Warnw("worker_history_refresh_fetch_session_failed", "session_id", payload.SessionID, "error", err)
		return err
	}

	count, err := c.EntregaService.RefreshHistory(ctx, session)
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) {
			logger.Debugw("worker_history_refresh_skip_session_expired", "session_id", payload.SessionID)
			return nil
		}
		logger.Warnw("worker_history_refresh_failed", "session_id", payload.SessionID, "error", err)
		return err
	}

	logger.Debugw("worker_history_refresh_done", "session_id", payload.SessionID, "count", count)
	return nil
}
