package service

import "errors"

var (
	// ErrSessionNotFound la sesión no existe o fue cerrada
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired la sesión venció; el backend ya no es alcanzable
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidCredentials credenciales rechazadas por el backend
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCaptchaRequired falta el captcha en una escena que lo exige
	ErrCaptchaRequired = errors.New("captcha required")
	// ErrCaptchaInvalid captcha incorrecto o vencido
	ErrCaptchaInvalid = errors.New("captcha invalid")
	// ErrCaptchaConfigInvalid configuración de captcha inválida
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	// ErrOperationInFlight la sesión de formulario tiene una operación en curso
	ErrOperationInFlight = errors.New("operation in flight")
	// ErrValidation la entrada no pasó validación local; el mensaje queda en el formulario
	ErrValidation = errors.New("validation failed")
	// ErrModalTransition transición de modal no permitida desde el estado actual
	ErrModalTransition = errors.New("modal transition not allowed")
	// ErrModalLocked el modal está en loading y no admite descartes
	ErrModalLocked = errors.New("modal locked while loading")
	// ErrNoPendingAction no hay acción pendiente que confirmar
	ErrNoPendingAction = errors.New("no pending action")
	// ErrRecordNotFound el registro no está en el historial retenido
	ErrRecordNotFound = errors.New("record not found in history")

	// ErrSealKeyInvalid clave de sellado ausente o mal formada
	ErrSealKeyInvalid = errors.New("seal key invalid")
	// ErrSealedTokenInvalid token sellado corrupto o manipulado
	ErrSealedTokenInvalid = errors.New("sealed token invalid")
)
