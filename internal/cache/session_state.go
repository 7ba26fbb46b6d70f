package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/entregas-next/internal/models"
)

const sessionStateCacheTTL = 10 * time.Minute

// SessionState instantánea de autenticación de una sesión del portal
// Evita consultar la base de datos en cada petición; expires_at es
// timestamp Unix en segundos
type SessionState struct {
	SessionID    string   `json:"session_id"`
	UserID       int      `json:"user_id"`
	Roles        []string `json:"roles"`
	PharmacyCode string   `json:"pharmacy_code"`
	ExpiresAt    int64    `json:"expires_at"`
	UpdatedAt    int64    `json:"updated_at"`
}

func sessionStateKey(sessionID string) string {
	return fmt.Sprintf("auth:session:%s", sessionID)
}

// BuildSessionState construye la instantánea desde el modelo
func BuildSessionState(session *models.Session) *SessionState {
	if session == nil {
		return nil
	}
	state := &SessionState{
		SessionID:    session.ID,
		UserID:       session.UserID,
		Roles:        session.RoleList(),
		PharmacyCode: session.PharmacyCode,
		UpdatedAt:    time.Now().Unix(),
	}
	if !session.ExpiresAt.IsZero() {
		state.ExpiresAt = session.ExpiresAt.Unix()
	}
	return state
}

// GetSessionState lee la instantánea de una sesión
func GetSessionState(ctx context.Context, sessionID string) (*SessionState, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}
	var state SessionState
	hit, err := GetJSON(ctx, sessionStateKey(sessionID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetSessionState escribe la instantánea de una sesión
func SetSessionState(ctx context.Context, state *SessionState) error {
	if state == nil || state.SessionID == "" {
		return nil
	}
	return SetJSON(ctx, sessionStateKey(state.SessionID), state, sessionStateCacheTTL)
}

// DelSessionState elimina la instantánea de una sesión
func DelSessionState(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return Del(ctx, sessionStateKey(sessionID))
}
