package public

import (
	handlershared "github.com/entregas-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// CaptchaPayloadRequest alias local del payload compartido
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
