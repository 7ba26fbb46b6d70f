package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/eticos"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/models"
)

// PatientService actualización de datos de contacto del paciente
// Comparte la sesión de formulario con el flujo de entregas: la
// confirmación pasa por el mismo modal y el mismo candado de red
type PatientService struct {
	cfg      *config.Config
	backend  *eticos.Client
	sessions *SessionService
	forms    *FormRegistry
}

// NewPatientService crea el servicio de pacientes
func NewPatientService(cfg *config.Config, backend *eticos.Client, sessions *SessionService, forms *FormRegistry) *PatientService {
	return &PatientService{cfg: cfg, backend: backend, sessions: sessions, forms: forms}
}

func (s *PatientService) form(session *models.Session) *FormSession {
	return s.forms.Get(session.ID, strconv.Itoa(session.UserID))
}

// PatientUpdateInput cambios solicitados sobre el paciente del borrador
// La dirección llega estructurada y se aplana antes de viajar al backend
type PatientUpdateInput struct {
	NamePatient    string   `json:"namePatient"`
	PrimaryPhone   string   `json:"primaryPhone"`
	SecondaryPhone string   `json:"secondaryPhone"`
	Email          string   `json:"email"`
	Address        *Address `json:"address"`
}

func (in PatientUpdateInput) empty() bool {
	return strings.TrimSpace(in.NamePatient) == "" &&
		strings.TrimSpace(in.PrimaryPhone) == "" &&
		strings.TrimSpace(in.SecondaryPhone) == "" &&
		strings.TrimSpace(in.Email) == "" &&
		(in.Address == nil || in.Address.Empty())
}

// BeginUpdate valida los cambios y abre el modal de confirmación
// El paciente sale del borrador vigente; sin paciente hidratado no hay
// nada que actualizar
func (s *PatientService) BeginUpdate(session *models.Session, input PatientUpdateInput) (FormSnapshot, error) {
	f := s.form(session)
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.draft.HasPatient() {
		return f.snapshotLocked(), fmt.Errorf("%w: no hay paciente en el formulario", ErrValidation)
	}
	if input.empty() {
		return f.snapshotLocked(), fmt.Errorf("%w: no hay cambios para aplicar", ErrValidation)
	}

	patch := &eticos.PatientPatch{
		Identification: strings.TrimSpace(f.draft.Identification),
		NamePatient:    strings.TrimSpace(input.NamePatient),
		PrimaryPhone:   strings.TrimSpace(input.PrimaryPhone),
		SecondaryPhone: strings.TrimSpace(input.SecondaryPhone),
		Email:          strings.TrimSpace(input.Email),
	}
	if input.Address != nil && !input.Address.Empty() {
		patch.Address = FormatAddress(*input.Address)
	}

	if err := f.modal.Open(constants.ModalActionPaciente, "¿Deseas actualizar los datos del paciente?"); err != nil {
		return f.snapshotLocked(), err
	}
	f.pendingPatient = patch
	f.message = ""
	return f.snapshotLocked(), nil
}

// ConfirmUpdate ejecuta la actualización confirmada en el modal
// Éxito fusiona los cambios en el borrador; un fallo conserva el
// borrador y deja el modal en error
func (s *PatientService) ConfirmUpdate(ctx context.Context, session *models.Session) (FormSnapshot, error) {
	f := s.form(session)

	if err := f.beginNetwork(); err != nil {
		return f.Snapshot(), err
	}
	defer f.endNetwork()

	f.mu.Lock()
	if f.modal.Phase != ModalConfirm || f.modal.Action != constants.ModalActionPaciente || f.pendingPatient == nil {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, ErrNoPendingAction
	}
	if err := f.modal.BeginLoading(); err != nil {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, err
	}
	patch := *f.pendingPatient
	f.mu.Unlock()

	token, err := s.sessions.BackendToken(session)
	if err != nil {
		f.mu.Lock()
		_ = f.modal.Fail(MsgSesionVencida)
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, err
	}

	err = s.backend.UpdatePatient(ctx, token, patch)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		_ = f.modal.Fail(MsgActualizarPaciente)
		logger.Warnw("patient_update_failed",
			"session_id", session.ID,
			"identification", patch.Identification,
			"error", err,
		)
		return f.snapshotLocked(), nil
	}

	s.mergeIntoDraft(&f.draft, patch)
	f.pendingPatient = nil
	_ = f.modal.Succeed(MsgPacienteActualizado)

	logger.Infow("patient_updated",
		"session_id", session.ID,
		"identification", patch.Identification,
	)
	return f.snapshotLocked(), nil
}

// mergeIntoDraft refleja en el borrador lo que el backend ya aceptó
func (s *PatientService) mergeIntoDraft(d *EntregaDraft, patch eticos.PatientPatch) {
	if patch.NamePatient != "" {
		d.PatientName = patch.NamePatient
	}
	if patch.PrimaryPhone != "" {
		phones := patch.PrimaryPhone
		if patch.SecondaryPhone != "" {
			phones += ", " + patch.SecondaryPhone
		}
		d.Phones = phones
	} else if patch.SecondaryPhone != "" {
		primary, _ := SplitPhones(d.Phones)
		if primary != "" {
			d.Phones = primary + ", " + patch.SecondaryPhone
		} else {
			d.Phones = patch.SecondaryPhone
		}
	}
	if patch.Email != "" {
		email := patch.Email
		d.Email = &email
	}
	if patch.Address != "" {
		d.Address = patch.Address
	}
}
