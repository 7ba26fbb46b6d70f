package portal

import (
	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/http/response"
	"github.com/entregas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetForm instantánea del formulario de validación
func (h *Handler) GetForm(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}
	response.Success(c, h.EntregaService.Snapshot(session))
}

// SearchRequest texto de búsqueda del formulario
type SearchRequest struct {
	Value string `json:"value"`
}

// Search fija el texto de búsqueda y consulta la fórmula
func (h *Handler) Search(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Petición inválida.", err)
		return
	}

	h.EntregaService.SetSearch(session, req.Value)
	snap, err := h.EntregaService.Search(c.Request.Context(), session)
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, snap)
}

// UpdateDraft aplica cambios de edición al borrador
func (h *Handler) UpdateDraft(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	var update service.DraftUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, response.CodeBadRequest, "Petición inválida.", err)
		return
	}

	snap, err := h.EntregaService.UpdateDraft(session, update)
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, snap)
}

// Submit valida el borrador y abre el modal de confirmación
func (h *Handler) Submit(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	snap, err := h.EntregaService.Submit(session)
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, snap)
}

// ConfirmModal ejecuta la acción pendiente del modal
// La acción confirmada decide el flujo: guardar la gestión de entrega o
// actualizar los datos del paciente
func (h *Handler) ConfirmModal(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	var snap service.FormSnapshot
	var err error
	switch h.EntregaService.Snapshot(session).Modal.Action {
	case constants.ModalActionPaciente:
		snap, err = h.PatientService.ConfirmUpdate(c.Request.Context(), session)
	default:
		snap, err = h.EntregaService.ConfirmEntrega(c.Request.Context(), session)
	}
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, snap)
}

// DismissModal cierra el modal (cancelar o cerrar según el estado)
func (h *Handler) DismissModal(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	snap, err := h.EntregaService.DismissModal(session)
	if err != nil {
		respondFormActionError(c, err)
		return
	}
	response.Success(c, snap)
}

// ResetForm descarta el formulario completo
func (h *Handler) ResetForm(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}
	response.Success(c, h.EntregaService.Reset(session))
}
