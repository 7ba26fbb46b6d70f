package public

import (
	"errors"

	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/http/response"
	"github.com/entregas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest credenciales de inicio de sesión del regente
type LoginRequest struct {
	IDUsers        string                `json:"idUsers" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// Login autentica al regente contra el backend y abre la sesión del portal
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Petición inválida.", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
			switch {
			case errors.Is(captchaErr, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "El captcha es obligatorio.", nil)
			case errors.Is(captchaErr, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "El captcha no es válido.", nil)
			default:
				respondError(c, response.CodeInternal, "No fue posible verificar el captcha.", captchaErr)
			}
			return
		}
	}

	result, err := h.SessionService.Login(c.Request.Context(), service.LoginInput{
		IDUsers:  req.IDUsers,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "Usuario o contraseña incorrectos.", nil)
		default:
			respondError(c, response.CodeInternal, "No fue posible iniciar sesión.", err)
		}
		return
	}

	s := result.Session
	response.Success(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Unix(),
		"user": gin.H{
			"id":       s.UserID,
			"name":     s.Name,
			"nit":      s.Nit,
			"modality": s.Modality,
			"program":  s.Program,
			"roles":    s.RoleList(),
		},
		"contract": s.Contract,
		"pharmacy": gin.H{
			"name":         s.PharmacyName,
			"city":         s.PharmacyCity,
			"pharmacyCode": s.PharmacyCode,
		},
	})
}
