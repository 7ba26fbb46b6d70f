package portal

import (
	"strconv"
	"strings"

	"github.com/entregas-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListEntregas historial de gestiones de la sesión, filtrable por texto
func (h *Handler) ListEntregas(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	term := strings.TrimSpace(c.Query("q"))
	entregas := h.EntregaService.History(session, term)
	response.Success(c, gin.H{
		"entregas": entregas,
		"count":    len(entregas),
	})
}

// RefreshEntregas reconsulta el historial contra el backend
func (h *Handler) RefreshEntregas(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	count, err := h.EntregaService.RefreshHistory(c.Request.Context(), session)
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// SelectEntrega carga una gestión del historial en el formulario
func (h *Handler) SelectEntrega(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	managementID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "Identificador de gestión inválido.", nil)
		return
	}

	snap, err := h.EntregaService.Select(session, managementID)
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, snap)
}

// DeselectEntrega limpia la selección y reinicia el formulario
func (h *Handler) DeselectEntrega(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}
	response.Success(c, h.EntregaService.Deselect(session))
}

// UpdateCallResultRequest cambio de resultado de llamada sobre el historial
type UpdateCallResultRequest struct {
	CallResult   string  `json:"callResult" binding:"required"`
	DeliveryDate *string `json:"deliveryDate"`
}

// UpdateCallResult actualiza el resultado de llamada de una gestión retenida
func (h *Handler) UpdateCallResult(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	managementID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "Identificador de gestión inválido.", nil)
		return
	}

	var req UpdateCallResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Petición inválida.", err)
		return
	}

	if err := h.EntregaService.UpdateCallResult(session, managementID, req.CallResult, req.DeliveryDate); err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
