package service

import (
	"sync"

	"github.com/entregas-next/internal/eticos"
)

// FormSession estado del formulario de validación de una sesión
// Serializa todas las operaciones del formulario con su propio candado;
// busy refleja una operación de red en curso y bloquea las demás
type FormSession struct {
	mu sync.Mutex

	sessionID      string
	search         string
	message        string
	busy           bool
	draft          EntregaDraft
	modal          ConfirmModal
	selected       *int
	pendingPatient *eticos.PatientPatch
}

// NewFormSession crea la sesión de formulario para un regente
func NewFormSession(sessionID, pharmacistID string) *FormSession {
	return &FormSession{
		sessionID: sessionID,
		draft:     NewDraft(pharmacistID),
		modal:     NewConfirmModal(),
	}
}

// ModalSnapshot proyección del modal para el cliente
type ModalSnapshot struct {
	State   ModalPhase `json:"state"`
	Message string     `json:"message"`
	Action  string     `json:"action,omitempty"`
	Buttons []string   `json:"buttons"`
}

// FormSnapshot proyección completa del formulario para el cliente
// La hora de domicilio viaja además recortada a HH:mm para mostrarla
type FormSnapshot struct {
	SearchValue          string        `json:"searchValue"`
	Draft                EntregaDraft  `json:"draft"`
	DeliveryTimeDisplay  string        `json:"deliveryTimeDisplay"`
	ErrorMessage         string        `json:"errorMessage"`
	Busy                 bool          `json:"busy"`
	SelectedManagementID *int          `json:"selectedManagementId"`
	Modal                ModalSnapshot `json:"modal"`
}

// Snapshot captura el estado actual del formulario
func (f *FormSession) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *FormSession) snapshotLocked() FormSnapshot {
	var selected *int
	if f.selected != nil {
		id := *f.selected
		selected = &id
	}
	display := ""
	if f.draft.DeliveryTime != nil {
		display = PrettyHora(*f.draft.DeliveryTime)
	}
	return FormSnapshot{
		SearchValue:          f.search,
		Draft:                f.draft,
		DeliveryTimeDisplay:  display,
		ErrorMessage:         f.message,
		Busy:                 f.busy,
		SelectedManagementID: selected,
		Modal: ModalSnapshot{
			State:   f.modal.Phase,
			Message: f.modal.Message,
			Action:  f.modal.Action,
			Buttons: f.modal.Buttons(),
		},
	}
}

// beginNetwork marca una operación de red en curso
// Devuelve ErrOperationInFlight si ya hay una
func (f *FormSession) beginNetwork() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrOperationInFlight
	}
	f.busy = true
	return nil
}

func (f *FormSession) endNetwork() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
}

// FormRegistry sesiones de formulario por sesión del portal
type FormRegistry struct {
	mu    sync.Mutex
	forms map[string]*FormSession
}

// NewFormRegistry crea el registro de formularios
func NewFormRegistry() *FormRegistry {
	return &FormRegistry{forms: make(map[string]*FormSession)}
}

// Get devuelve el formulario de la sesión, creándolo si no existe
func (r *FormRegistry) Get(sessionID, pharmacistID string) *FormSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.forms[sessionID]; ok {
		return f
	}
	f := NewFormSession(sessionID, pharmacistID)
	r.forms[sessionID] = f
	return f
}

// Remove descarta el formulario de una sesión
func (r *FormRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, sessionID)
}
