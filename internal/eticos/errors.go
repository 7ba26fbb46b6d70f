package eticos

import "errors"

var (
	// ErrMissingToken operación sin token bearer
	ErrMissingToken = errors.New("missing bearer token")
	// ErrNotFound el backend respondió success=false sin datos
	ErrNotFound = errors.New("record not found")
	// ErrInvalidResponse la respuesta no cumple el sobre {success,data,error}
	ErrInvalidResponse = errors.New("invalid backend response")
)

// BackendError error de negocio reportado por el backend en el campo error
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// AsBackendError extrae un BackendError de una cadena de errores
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
