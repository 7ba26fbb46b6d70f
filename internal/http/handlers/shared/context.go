package shared

import (
	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/http/response"
	"github.com/entregas-next/internal/models"

	"github.com/gin-gonic/gin"
)

// GetContextSession lee la sesión resuelta por el middleware de autenticación
// Si no está, responde 401 y devuelve false
func GetContextSession(c *gin.Context) (*models.Session, bool) {
	value, exists := c.Get(constants.CtxKeySession)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "No autorizado.", nil)
		return nil, false
	}
	session, ok := value.(*models.Session)
	if !ok || session == nil {
		RespondError(c, response.CodeInternal, "Sesión inválida en el contexto.", nil)
		return nil, false
	}
	return session, true
}
