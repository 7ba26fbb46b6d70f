package service

import "fmt"

// ModalPhase estado del modal de confirmación
type ModalPhase string

const (
	ModalClosed  ModalPhase = "closed"
	ModalConfirm ModalPhase = "confirm"
	ModalLoading ModalPhase = "loading"
	ModalSuccess ModalPhase = "success"
	ModalError   ModalPhase = "error"
)

// modalTransitions transiciones permitidas del modal
var modalTransitions = map[ModalPhase][]ModalPhase{
	ModalClosed:  {ModalConfirm},
	ModalConfirm: {ModalLoading, ModalClosed},
	ModalLoading: {ModalSuccess, ModalError},
	ModalSuccess: {ModalClosed},
	ModalError:   {ModalClosed},
}

// modalButtons botones visibles por estado
var modalButtons = map[ModalPhase][]string{
	ModalClosed:  {},
	ModalConfirm: {"confirm", "cancel"},
	ModalLoading: {},
	ModalSuccess: {"close"},
	ModalError:   {"close"},
}

// ConfirmModal modal de confirmación de acciones del formulario
// action indica la acción pendiente (entrega o paciente)
type ConfirmModal struct {
	Phase   ModalPhase `json:"state"`
	Message string     `json:"message"`
	Action  string     `json:"action"`
}

// NewConfirmModal crea el modal cerrado
func NewConfirmModal() ConfirmModal {
	return ConfirmModal{Phase: ModalClosed}
}

// Buttons botones visibles en el estado actual
func (m *ConfirmModal) Buttons() []string {
	if btns, ok := modalButtons[m.Phase]; ok {
		return btns
	}
	return []string{}
}

func (m *ConfirmModal) canTransition(to ModalPhase) bool {
	for _, allowed := range modalTransitions[m.Phase] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (m *ConfirmModal) transition(to ModalPhase) error {
	if !m.canTransition(to) {
		if m.Phase == ModalLoading && to == ModalClosed {
			return ErrModalLocked
		}
		return fmt.Errorf("%w: %s -> %s", ErrModalTransition, m.Phase, to)
	}
	m.Phase = to
	return nil
}

// Open abre el modal en confirmación con la acción pendiente
func (m *ConfirmModal) Open(action, message string) error {
	if err := m.transition(ModalConfirm); err != nil {
		return err
	}
	m.Action = action
	m.Message = message
	return nil
}

// BeginLoading pasa de confirmación a carga
func (m *ConfirmModal) BeginLoading() error {
	return m.transition(ModalLoading)
}

// Succeed termina la carga en éxito con el mensaje dado
func (m *ConfirmModal) Succeed(message string) error {
	if err := m.transition(ModalSuccess); err != nil {
		return err
	}
	m.Message = message
	return nil
}

// Fail termina la carga en error con el mensaje dado
// El borrador no se toca: el regente puede corregir y reintentar
func (m *ConfirmModal) Fail(message string) error {
	if err := m.transition(ModalError); err != nil {
		return err
	}
	m.Message = message
	return nil
}

// Dismiss cierra el modal; rechazado mientras está en loading
func (m *ConfirmModal) Dismiss() error {
	if m.Phase == ModalClosed {
		return nil
	}
	if err := m.transition(ModalClosed); err != nil {
		return err
	}
	m.Action = ""
	m.Message = ""
	return nil
}
