package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/entregas-next/internal/authz"
	"github.com/entregas-next/internal/cache"
	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/eticos"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/models"
	"github.com/entregas-next/internal/queue"
	"github.com/entregas-next/internal/repository"
	"github.com/entregas-next/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService sesiones del portal
// Intermedia el login contra el backend, persiste la sesión con el token
// sellado y emite el JWT propio del portal
type SessionService struct {
	cfg     *config.Config
	repo    repository.SessionRepository
	backend *eticos.Client
	authz   *authz.Service
	queue   *queue.Client
	stores  *store.Registry
	forms   *FormRegistry
	sealer  *Sealer
}

// NewSessionService crea el servicio de sesiones
func NewSessionService(
	cfg *config.Config,
	repo repository.SessionRepository,
	backend *eticos.Client,
	authzService *authz.Service,
	queueClient *queue.Client,
	stores *store.Registry,
	forms *FormRegistry,
	sealer *Sealer,
) *SessionService {
	return &SessionService{
		cfg:     cfg,
		repo:    repo,
		backend: backend,
		authz:   authzService,
		queue:   queueClient,
		stores:  stores,
		forms:   forms,
		sealer:  sealer,
	}
}

// SessionJWTClaims reclamos del JWT del portal
type SessionJWTClaims struct {
	SessionID string `json:"session_id"`
	UserID    int    `json:"user_id"`
	jwt.RegisteredClaims
}

// LoginInput credenciales de inicio de sesión
type LoginInput struct {
	IDUsers  string `json:"idUsers"`
	Password string `json:"password"`
}

// LoginResult resultado del inicio de sesión
type LoginResult struct {
	Session   *models.Session
	Token     string
	ExpiresAt time.Time
}

// Login autentica contra el backend y abre la sesión del portal
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	idUsers := strings.TrimSpace(input.IDUsers)
	if idUsers == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	auth, err := s.backend.Login(ctx, idUsers, input.Password)
	if err != nil {
		if _, ok := eticos.AsBackendError(err); ok || errors.Is(err, eticos.ErrNotFound) {
			logger.Infow("login_rejected_by_backend", "id_users", idUsers)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("backend login failed: %w", err)
	}

	contract, err := s.backend.Contract(ctx, auth.TokenJWT, auth.Nit, auth.IDUser)
	if err != nil {
		return nil, fmt.Errorf("backend contract failed: %w", err)
	}

	sealed, err := s.sealer.Seal(auth.TokenJWT)
	if err != nil {
		return nil, fmt.Errorf("seal backend token failed: %w", err)
	}

	expireHours := s.cfg.Session.ExpireHours
	if expireHours <= 0 {
		expireHours = 12
	}
	now := time.Now()
	session := &models.Session{
		ID:           uuid.NewString(),
		UserID:       auth.IDUser,
		Name:         auth.Name,
		Nit:          auth.Nit,
		Modality:     auth.Modality,
		Program:      auth.Program,
		SealedToken:  sealed,
		Contract:     contract.Contract,
		PharmacyCode: contract.Pharmacy.PharmacyCode,
		PharmacyName: contract.Pharmacy.Name,
		PharmacyCity: contract.Pharmacy.City,
		ExpiresAt:    now.Add(time.Duration(expireHours) * time.Hour),
	}
	session.SetRoleList(auth.Main)

	if err := s.repo.Create(session); err != nil {
		return nil, fmt.Errorf("persist session failed: %w", err)
	}

	if err := s.authz.SetUserRoles(session.UserID, auth.Main); err != nil {
		logger.Warnw("authz_role_sync_failed", "user_id", session.UserID, "error", err)
	}

	if err := cache.SetSessionState(ctx, cache.BuildSessionState(session)); err != nil {
		logger.Warnw("session_state_cache_failed", "session_id", session.ID, "error", err)
	}

	// El primer historial de la sesión va por la cola crítica
	if err := s.queue.EnqueueHistoryRefreshCritical(queue.HistoryRefreshPayload{SessionID: session.ID}); err != nil {
		logger.Warnw("history_refresh_enqueue_failed", "session_id", session.ID, "error", err)
	}

	token, err := s.GenerateJWT(session)
	if err != nil {
		return nil, err
	}

	logger.Infow("session_opened",
		"session_id", session.ID,
		"user_id", session.UserID,
		"pharmacy_code", session.PharmacyCode,
	)
	return &LoginResult{Session: session, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// GenerateJWT firma el JWT del portal para la sesión
func (s *SessionService) GenerateJWT(session *models.Session) (string, error) {
	claims := SessionJWTClaims{
		SessionID: session.ID,
		UserID:    session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(session.UserID),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Session.JWTSecret))
}

// ParseJWT valida el JWT del portal
func (s *SessionService) ParseJWT(tokenString string) (*SessionJWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionJWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Session.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionJWTClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrSessionNotFound
	}
	return claims, nil
}

// Authenticate resuelve la sesión a partir del JWT del portal
func (s *SessionService) Authenticate(ctx context.Context, tokenString string) (*models.Session, error) {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	// Rechazo rápido con la instantánea cacheada
	if state, hit, cacheErr := cache.GetSessionState(ctx, claims.SessionID); cacheErr == nil && hit {
		if state.ExpiresAt > 0 && time.Now().Unix() > state.ExpiresAt {
			return nil, ErrSessionExpired
		}
	}

	session, err := s.repo.GetByID(claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		s.cleanup(ctx, session.ID, session.UserID)
		_ = s.repo.Delete(session.ID)
		return nil, ErrSessionExpired
	}
	return session, nil
}

// BackendToken abre el token sellado del backend
// Sin token utilizable la sesión se trata como vencida
func (s *SessionService) BackendToken(session *models.Session) (string, error) {
	if session == nil || len(session.SealedToken) == 0 {
		return "", ErrSessionExpired
	}
	token, err := s.sealer.Open(session.SealedToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	return token, nil
}

// Logout cierra la sesión y descarta todo su estado local
func (s *SessionService) Logout(ctx context.Context, session *models.Session) error {
	if session == nil {
		return nil
	}
	if err := s.repo.Delete(session.ID); err != nil {
		return err
	}
	s.cleanup(ctx, session.ID, session.UserID)
	logger.Infow("session_closed", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

// MarkRefreshed estampa el último refresco de historial
func (s *SessionService) MarkRefreshed(session *models.Session) {
	now := time.Now()
	session.LastRefreshAt = &now
	if err := s.repo.Update(session); err != nil {
		logger.Warnw("session_refresh_stamp_failed", "session_id", session.ID, "error", err)
	}
}

// ActiveSessions sesiones vigentes (para el refresco periódico)
func (s *SessionService) ActiveSessions() ([]models.Session, error) {
	return s.repo.ListActive(time.Now())
}

// GetSession obtiene una sesión por id
func (s *SessionService) GetSession(sessionID string) (*models.Session, error) {
	session, err := s.repo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// PurgeExpired elimina sesiones vencidas y su estado asociado
func (s *SessionService) PurgeExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.DeleteExpired(time.Now())
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.cleanup(ctx, id, 0)
	}
	if len(ids) > 0 {
		logger.Infow("expired_sessions_purged", "count", len(ids))
	}
	return len(ids), nil
}

func (s *SessionService) cleanup(ctx context.Context, sessionID string, userID int) {
	s.stores.Get(sessionID).Clear()
	s.stores.Remove(sessionID)
	s.forms.Remove(sessionID)
	if err := cache.DelSessionState(ctx, sessionID); err != nil {
		logger.Warnw("session_state_evict_failed", "session_id", sessionID, "error", err)
	}
	if userID != 0 {
		if err := s.authz.ClearUserRoles(userID); err != nil {
			logger.Warnw("authz_role_clear_failed", "user_id", userID, "error", err)
		}
	}
}
