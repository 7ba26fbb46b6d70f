package constants

// Resultados de llamada de una gestión de entrega
const (
	CallResultConfirmado       = "confirmado"
	CallResultRechazado        = "rechazado"
	CallResultNoContesta       = "no-contesta"
	CallResultReprogramar      = "reprogramar"
	CallResultNumeroEquivocado = "numero-equivocado"
	CallResultNoVolverALlamar  = "no-volver-a-llamar"
)

// CallResults resultados admitidos, en orden de presentación
var CallResults = []string{
	CallResultConfirmado,
	CallResultRechazado,
	CallResultNoContesta,
	CallResultReprogramar,
	CallResultNumeroEquivocado,
	CallResultNoVolverALlamar,
}

// IsValidCallResult valida un resultado de llamada
func IsValidCallResult(value string) bool {
	for _, r := range CallResults {
		if r == value {
			return true
		}
	}
	return false
}

// Tipos de empaque del medicamento
const (
	PackageTypeGenerico = "generico"
	PackageTypeNevera   = "nevera"
)

// IsValidPackageType valida un tipo de empaque
func IsValidPackageType(value string) bool {
	return value == PackageTypeGenerico || value == PackageTypeNevera
}

// Roles del portal (derivados del arreglo main del backend)
const (
	RoleRegente    = "regente"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// Acciones pendientes del modal de confirmación
const (
	ModalActionEntrega  = "entrega"
	ModalActionPaciente = "paciente"
)

// Proveedores de captcha
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// Escenas de captcha
const (
	CaptchaSceneLogin = "login"
)

// Tipos de tarea asíncrona
const (
	TaskTypeHistoryRefresh = "entregas:history_refresh"
)

// Colas asynq
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Claves de contexto gin
const (
	CtxKeySessionID = "session_id"
	CtxKeySession   = "session"
)
