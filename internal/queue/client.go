package queue

import (
	"fmt"
	"strings"

	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue nombre de la cola por defecto
	DefaultQueue = constants.QueueDefault
	// CriticalQueue cola de tareas que deben atenderse primero
	CriticalQueue = constants.QueueCritical
)

// Client envoltura del cliente de colas
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient crea el cliente de colas
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled indica si la cola está habilitada
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close cierra el cliente
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueHistoryRefresh encola el refresco de historial de una sesión
func (c *Client) EnqueueHistoryRefresh(payload HistoryRefreshPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewHistoryRefreshTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueueHistoryRefreshCritical encola el refresco por la cola crítica
// El refresco posterior al login debe atenderse antes que los periódicos
func (c *Client) EnqueueHistoryRefreshCritical(payload HistoryRefreshPayload) error {
	return c.EnqueueHistoryRefresh(payload, asynq.Queue(CriticalQueue))
}

// BuildServerConfig genera la configuración del servidor de colas
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
