package public

import "github.com/entregas-next/internal/provider"

// Handler endpoints públicos del portal (sin sesión)
type Handler struct {
	*provider.Container
}

// New crea el handler público
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
