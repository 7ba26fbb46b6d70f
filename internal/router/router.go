package router

import (
	"fmt"
	"strings"

	"github.com/entregas-next/internal/cache"
	"github.com/entregas-next/internal/config"
	portalhandlers "github.com/entregas-next/internal/http/handlers/portal"
	publichandlers "github.com/entregas-next/internal/http/handlers/public"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter inicializa las rutas del portal
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	portalHandler := portalhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "en"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "Demasiados intentos de inicio de sesión. Intenta de nuevo en %d segundos.",
	}

	// Middlewares globales
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Endpoints públicos
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetPublicConfig)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// Autenticación
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("idUsers")), publicHandler.Login)
		}

		// Portal del regente (sesión + RBAC)
		portal := apiV1.Group("/portal")
		portal.Use(SessionAuthMiddleware(c.SessionService), PortalRBACMiddleware(c.AuthzService))
		{
			portal.GET("/me", portalHandler.Me)
			portal.POST("/logout", portalHandler.Logout)

			// Historial de gestiones
			portal.GET("/entregas", portalHandler.ListEntregas)
			portal.POST("/entregas/refresh", portalHandler.RefreshEntregas)
			portal.PUT("/entregas/:id/select", portalHandler.SelectEntrega)
			portal.DELETE("/entregas/select", portalHandler.DeselectEntrega)
			portal.PATCH("/entregas/:id/resultado", portalHandler.UpdateCallResult)

			// Formulario de validación
			portal.GET("/form", portalHandler.GetForm)
			portal.POST("/form/search", portalHandler.Search)
			portal.PATCH("/form/draft", portalHandler.UpdateDraft)
			portal.POST("/form/submit", portalHandler.Submit)
			portal.POST("/form/modal/confirm", portalHandler.ConfirmModal)
			portal.POST("/form/modal/dismiss", portalHandler.DismissModal)
			portal.POST("/form/reset", portalHandler.ResetForm)

			// Datos del paciente
			portal.POST("/paciente", portalHandler.UpdatePatient)
		}
	}

	// Chequeo de salud
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
