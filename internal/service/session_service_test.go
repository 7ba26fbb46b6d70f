package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/entregas-next/internal/authz"
	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/eticos"
	"github.com/entregas-next/internal/models"
	"github.com/entregas-next/internal/queue"
	"github.com/entregas-next/internal/repository"
	"github.com/entregas-next/internal/store"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSessionTest(t *testing.T) (*SessionService, repository.SessionRepository) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			IDUsers  string `json:"idUsers"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		w.Header().Set("Content-Type", "application/json")
		if creds.IDUsers != "regente01" || creds.Password != "secreta" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false, "data": nil, "error": "Credenciales inválidas",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": eticos.AuthData{
				IDUser:   42,
				Main:     []string{"REGENTE"},
				Name:     "Regente Prueba",
				Nit:      "900123456",
				Modality: "ambulatoria",
				Program:  3,
				TokenJWT: "token-del-backend",
			},
			"error": nil,
		})
	})
	mux.HandleFunc("/contract", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": eticos.ContractData{
				Contract: "CT-2025-01",
				Pharmacy: eticos.PharmacyData{
					Name:         "Farmacia Centro",
					City:         "Medellín",
					PharmacyCode: "F01",
				},
			},
			"error": nil,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Session.JWTSecret = "secreto-de-prueba"
	cfg.Session.ExpireHours = 1
	cfg.Eticos.BaseURL = srv.URL
	cfg.Eticos.AuthURL = srv.URL
	cfg.Eticos.TimeoutMS = 5000

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	repo := repository.NewSessionRepository(db)
	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("authz service failed: %v", err)
	}
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	sealer, err := NewSealer("clave-de-prueba")
	if err != nil {
		t.Fatalf("sealer failed: %v", err)
	}

	svc := NewSessionService(cfg, repo, eticos.NewClient(cfg.Eticos), authzSvc, queueClient,
		store.NewRegistry(20), NewFormRegistry(), sealer)
	return svc, repo
}

func TestLoginOpensSession(t *testing.T) {
	svc, _ := setupSessionTest(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{IDUsers: "regente01", Password: "secreta"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("login should issue a portal token")
	}
	s := result.Session
	if s.UserID != 42 || s.PharmacyCode != "F01" || s.PharmacyCity != "Medellín" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if roles := s.RoleList(); len(roles) != 1 || roles[0] != "REGENTE" {
		t.Fatalf("roles = %v", roles)
	}

	// el token del backend queda sellado, nunca en claro
	if string(s.SealedToken) == "token-del-backend" {
		t.Fatalf("backend token stored in the clear")
	}
	token, err := svc.BackendToken(s)
	if err != nil {
		t.Fatalf("backend token failed: %v", err)
	}
	if token != "token-del-backend" {
		t.Fatalf("unsealed token = %q", token)
	}

	resolved, err := svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if resolved.ID != s.ID {
		t.Fatalf("authenticate resolved wrong session")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := setupSessionTest(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, LoginInput{IDUsers: "regente01", Password: "mala"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{IDUsers: "  ", Password: ""}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := setupSessionTest(t)
	if _, err := svc.Authenticate(context.Background(), "no-es-un-jwt"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	svc, _ := setupSessionTest(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{IDUsers: "regente01", Password: "secreta"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(ctx, result.Session); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, result.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session should be gone, got %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, repo := setupSessionTest(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{IDUsers: "regente01", Password: "secreta"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	session := result.Session
	session.ExpiresAt = time.Now().Add(-time.Minute)
	if err := repo.Update(session); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	purged, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d", purged)
	}
	if _, err := svc.Authenticate(ctx, result.Token); err == nil {
		t.Fatalf("expired session should not authenticate")
	}
}
