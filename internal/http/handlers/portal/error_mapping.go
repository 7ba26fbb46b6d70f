package portal

import (
	"errors"

	handlershared "github.com/entregas-next/internal/http/handlers/shared"
	"github.com/entregas-next/internal/http/response"
	"github.com/entregas-next/internal/models"
	"github.com/entregas-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getContextSession(c *gin.Context) (*models.Session, bool) {
	return handlershared.GetContextSession(c)
}

// mappedHandlerError mapeo de error de negocio a respuesta del API
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var formActionErrorRules = []mappedHandlerError{
	{target: service.ErrOperationInFlight, code: response.CodeConflict, msg: "Hay una operación en curso."},
	{target: service.ErrModalLocked, code: response.CodeConflict, msg: "La operación está en curso, espera el resultado."},
	{target: service.ErrModalTransition, code: response.CodeConflict, msg: "La acción no es válida en el estado actual del modal."},
	{target: service.ErrNoPendingAction, code: response.CodeBadRequest, msg: "No hay una acción pendiente por confirmar."},
	{target: service.ErrValidation, code: response.CodeBadRequest, msg: "Datos inválidos."},
	{target: service.ErrRecordNotFound, code: response.CodeNotFound, msg: "No se encontró la gestión solicitada."},
	{target: service.ErrSessionExpired, code: response.CodeUnauthorized, msg: service.MsgSesionVencida},
	{target: service.ErrSessionNotFound, code: response.CodeUnauthorized, msg: service.MsgSesionVencida},
}

func respondFormActionError(c *gin.Context, err error) {
	respondWithMappedError(c, err, formActionErrorRules, response.CodeInternal, "No fue posible completar la operación.")
}
