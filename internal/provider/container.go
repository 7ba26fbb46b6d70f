package provider

import (
	"github.com/entregas-next/internal/authz"
	"github.com/entregas-next/internal/cache"
	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/eticos"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/models"
	"github.com/entregas-next/internal/queue"
	"github.com/entregas-next/internal/repository"
	"github.com/entregas-next/internal/service"
	"github.com/entregas-next/internal/store"
)

// Container contenedor de inyección de dependencias
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	SessionRepo repository.SessionRepository

	// Infraestructura
	EticosClient *eticos.Client
	Stores       *store.Registry
	Forms        *service.FormRegistry

	// Services
	AuthzService   *authz.Service
	SessionService *service.SessionService
	EntregaService *service.EntregaService
	PatientService *service.PatientService
	CaptchaService *service.CaptchaService
}

// NewContainer inicializa el contenedor
func NewContainer(cfg *config.Config) *Container {
	// Inicializar caché
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// Inicializar cliente de colas
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. Repositorios
	c.initRepositories()

	// 2. Servicios
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.SessionRepo = repository.NewSessionRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	// Sin clave de sellado dedicada se deriva de la del JWT
	sealKey := c.Config.Session.SealKey
	if sealKey == "" {
		logger.Warnw("provider_seal_key_missing", "fallback", "session.jwt_secret")
		sealKey = c.Config.Session.JWTSecret
	}
	sealer, err := service.NewSealer(sealKey)
	if err != nil {
		logger.Errorw("provider_init_sealer_failed", "error", err)
		panic(err)
	}

	maxRecords := c.Config.History.MaxRecords
	if maxRecords <= 0 {
		maxRecords = store.DefaultMaxRecords
	}
	c.Stores = store.NewRegistry(maxRecords)
	c.Forms = service.NewFormRegistry()
	c.EticosClient = eticos.NewClient(c.Config.Eticos)

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.SessionService = service.NewSessionService(
		c.Config,
		c.SessionRepo,
		c.EticosClient,
		c.AuthzService,
		c.QueueClient,
		c.Stores,
		c.Forms,
		sealer,
	)
	c.EntregaService = service.NewEntregaService(c.Config, c.EticosClient, c.SessionService, c.Stores, c.Forms)
	c.PatientService = service.NewPatientService(c.Config, c.EticosClient, c.SessionService, c.Forms)
}
