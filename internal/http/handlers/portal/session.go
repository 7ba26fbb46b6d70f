package portal

import (
	"github.com/entregas-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Me datos de la sesión vigente
func (h *Handler) Me(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	response.Success(c, gin.H{
		"user": gin.H{
			"id":       session.UserID,
			"name":     session.Name,
			"nit":      session.Nit,
			"modality": session.Modality,
			"program":  session.Program,
			"roles":    session.RoleList(),
		},
		"contract": session.Contract,
		"pharmacy": gin.H{
			"name":         session.PharmacyName,
			"city":         session.PharmacyCity,
			"pharmacyCode": session.PharmacyCode,
		},
		"expires_at": session.ExpiresAt.Unix(),
	})
}

// Logout cierra la sesión del portal
func (h *Handler) Logout(c *gin.Context) {
	session, ok := getContextSession(c)
	if !ok {
		return
	}

	if err := h.SessionService.Logout(c.Request.Context(), session); err != nil {
		respondError(c, response.CodeInternal, "No fue posible cerrar la sesión.", err)
		return
	}
	response.Success(c, gin.H{"logged_out": true})
}
