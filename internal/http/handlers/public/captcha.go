package public

import (
	"errors"

	"github.com/entregas-next/internal/http/response"
	"github.com/entregas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha genera un desafío de captcha de imagen
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, "Captcha no disponible.", service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, response.CodeBadRequest, "Captcha no disponible.", nil)
		default:
			respondError(c, response.CodeInternal, "No fue posible generar el captcha.", err)
		}
		return
	}

	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// GetPublicConfig configuración pública del portal
func (h *Handler) GetPublicConfig(c *gin.Context) {
	data := gin.H{}
	if h.CaptchaService != nil {
		data["captcha"] = h.CaptchaService.PublicSetting()
	}
	response.Success(c, data)
}
