package queue

import (
	"encoding/json"

	"github.com/entregas-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskHistoryRefresh refresco del historial de entregas de una sesión
	TaskHistoryRefresh = constants.TaskTypeHistoryRefresh
)

// HistoryRefreshPayload carga del refresco de historial
type HistoryRefreshPayload struct {
	SessionID string `json:"session_id"`
}

// NewHistoryRefreshTask crea la tarea de refresco de historial
func NewHistoryRefreshTask(payload HistoryRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHistoryRefresh, body), nil
}
