package service

import "fmt"

// Mensajes del formulario de validación que ve el regente
const (
	MsgBusquedaVacia             = "Por favor, ingresa un radicado o tipo-número."
	MsgConsultaFallida           = "Hubo un problema al consultar el servicio."
	MsgCamposObligatorios        = "El radicado y el paciente son obligatorios."
	MsgFechaDomicilioObligatoria = "Debe seleccionar una fecha de domicilio para entregas confirmadas."
	MsgGuardarFallido            = "Error al guardar gestiones en la BD"
	MsgActualizarPaciente        = "Error al actualizar datos del paciente"
	MsgEntregaGuardada           = "Gestión de entrega guardada correctamente."
	MsgPacienteActualizado       = "Datos del paciente actualizados correctamente."
	MsgSesionVencida             = "La sesión venció. Inicia sesión nuevamente."
)

// MsgSinDatosPara mensaje de búsqueda sin resultados
func MsgSinDatosPara(query string) string {
	return fmt.Sprintf("No se encontraron datos para %s.", query)
}
