package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/entregas-next/internal/authz"
	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/http/response"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware middleware de CORS
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware middleware de id de petición
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware middleware de log estructurado de peticiones
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// SessionAuthMiddleware middleware de autenticación por sesión del portal
// Resuelve la sesión a partir del JWT del portal y la deja en el contexto
func SessionAuthMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			response.Unauthorized(c, "Sesión no disponible.")
			c.Abort()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Falta el encabezado de autorización.")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Unauthorized(c, "Encabezado de autorización inválido.")
			c.Abort()
			return
		}

		session, err := sessions.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionExpired):
				response.Unauthorized(c, service.MsgSesionVencida)
			case errors.Is(err, service.ErrSessionNotFound):
				response.Unauthorized(c, "Token inválido.")
			default:
				logger.Warnw("session_auth_failed", "error", err)
				response.Unauthorized(c, "Token inválido.")
			}
			c.Abort()
			return
		}

		c.Set(constants.CtxKeySessionID, session.ID)
		c.Set(constants.CtxKeySession, session)
		c.Set("user_id", session.UserID)
		c.Next()
	}
}

// PortalRBACMiddleware middleware RBAC del portal
// Los roles vienen del backend en el login; aquí solo se hace enforce
func PortalRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("portal_rbac_service_unavailable")
			response.Unauthorized(c, "No autorizado.")
			c.Abort()
			return
		}

		userIDRaw, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "No autorizado.")
			c.Abort()
			return
		}
		userID, ok := userIDRaw.(int)
		if !ok || userID == 0 {
			response.Unauthorized(c, "No autorizado.")
			c.Abort()
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceUser(userID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("portal_rbac_enforce_failed",
				"user_id", userID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			response.Unauthorized(c, "No autorizado.")
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("portal_rbac_permission_denied",
				"user_id", userID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, "No tienes permisos para esta operación.")
			c.Abort()
			return
		}

		c.Next()
	}
}
