package portal

import "github.com/entregas-next/internal/provider"

// Handler endpoints del portal del regente (requieren sesión)
type Handler struct {
	*provider.Container
}

// New crea el handler del portal
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
