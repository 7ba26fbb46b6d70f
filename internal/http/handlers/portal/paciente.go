package portal

import (
	"github.com/entregas-next/internal/http/response"
	"github.com/entregas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdatePatient valida los cambios del paciente y abre el modal
// La actualización solo viaja al backend al confirmar el modal
func (h *Handler) UpdatePatient(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	var input service.PatientUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "Petición inválida.", err)
		return
	}

	snap, err := h.PatientService.BeginUpdate(session, input)
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, snap)
}
