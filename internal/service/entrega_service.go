package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/eticos"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/models"
	"github.com/entregas-next/internal/store"
)

// EntregaService flujo del formulario de validación de entregas
// Orquesta búsqueda, edición, envío y confirmación contra el backend,
// y mantiene el historial consolidado de la sesión
type EntregaService struct {
	cfg      *config.Config
	backend  *eticos.Client
	sessions *SessionService
	stores   *store.Registry
	forms    *FormRegistry
}

// NewEntregaService crea el servicio de entregas
func NewEntregaService(
	cfg *config.Config,
	backend *eticos.Client,
	sessions *SessionService,
	stores *store.Registry,
	forms *FormRegistry,
) *EntregaService {
	return &EntregaService{
		cfg:      cfg,
		backend:  backend,
		sessions: sessions,
		stores:   stores,
		forms:    forms,
	}
}

func (s *EntregaService) form(session *models.Session) *FormSession {
	return s.forms.Get(session.ID, strconv.Itoa(session.UserID))
}

func (s *EntregaService) slotMinutes() int {
	if s.cfg.Delivery.TimeSlotMinutes > 0 {
		return s.cfg.Delivery.TimeSlotMinutes
	}
	return 30
}

// Snapshot estado actual del formulario de la sesión
func (s *EntregaService) Snapshot(session *models.Session) FormSnapshot {
	return s.form(session).Snapshot()
}

// SetSearch actualiza el texto de búsqueda
func (s *EntregaService) SetSearch(session *models.Session, value string) FormSnapshot {
	f := s.form(session)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = value
	f.message = ""
	return f.snapshotLocked()
}

// Search consulta la fórmula e hidrata la instantánea del paciente
// Búsqueda vacía produce mensaje local sin tocar la red; una búsqueda
// fallida reinicia el borrador completo, nunca queda hidratación parcial
func (s *EntregaService) Search(ctx context.Context, session *models.Session) (FormSnapshot, error) {
	f := s.form(session)

	f.mu.Lock()
	query := strings.TrimSpace(f.search)
	if query == "" {
		f.message = MsgBusquedaVacia
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, nil
	}
	f.mu.Unlock()

	if err := f.beginNetwork(); err != nil {
		return f.Snapshot(), err
	}
	defer f.endNetwork()

	token, err := s.sessions.BackendToken(session)
	if err != nil {
		return f.Snapshot(), err
	}

	patient, err := s.backend.FormulaPatient(ctx, token, query, session.PharmacyCode)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.draft.Reset()
		f.selected = nil
		switch {
		case errors.Is(err, eticos.ErrNotFound):
			f.message = MsgSinDatosPara(query)
		default:
			if _, ok := eticos.AsBackendError(err); ok {
				f.message = MsgSinDatosPara(query)
			} else {
				f.message = MsgConsultaFallida
				logger.Warnw("formula_lookup_failed",
					"session_id", session.ID,
					"query", query,
					"error", err,
				)
			}
		}
		return f.snapshotLocked(), nil
	}

	f.draft.HydratePatient(patient)
	f.message = ""
	return f.snapshotLocked(), nil
}

// UpdateDraft aplica cambios de edición al borrador
func (s *EntregaService) UpdateDraft(session *models.Session, update DraftUpdate) (FormSnapshot, error) {
	f := s.form(session)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.draft.Apply(update); err != nil {
		return f.snapshotLocked(), err
	}
	f.message = ""
	return f.snapshotLocked(), nil
}

// Select carga un registro del historial en el borrador
func (s *EntregaService) Select(session *models.Session, managementID int) (FormSnapshot, error) {
	f := s.form(session)
	rec, ok := s.stores.Get(session.ID).Find(managementID)
	if !ok {
		return f.Snapshot(), fmt.Errorf("%w: managementId %d", ErrRecordNotFound, managementID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.HydrateRecord(rec)
	f.selected = &rec.ManagementID
	f.search = rec.RegisteredTypeNumber
	f.message = ""
	return f.snapshotLocked(), nil
}

// Deselect limpia la selección y reinicia el borrador
func (s *EntregaService) Deselect(session *models.Session) FormSnapshot {
	f := s.form(session)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = nil
	f.draft.Reset()
	f.search = ""
	f.message = ""
	return f.snapshotLocked()
}

// Reset descarta el formulario completo
func (s *EntregaService) Reset(session *models.Session) FormSnapshot {
	return s.Deselect(session)
}

// Submit valida el borrador y abre el modal de confirmación
// Las validaciones corren antes de cualquier red; si fallan, el mensaje
// queda en el formulario y el modal no se abre
func (s *EntregaService) Submit(session *models.Session) (FormSnapshot, error) {
	f := s.form(session)
	f.mu.Lock()
	defer f.mu.Unlock()

	if msg := f.draft.ValidateForSubmit(); msg != "" {
		f.message = msg
		return f.snapshotLocked(), nil
	}

	if err := f.modal.Open(constants.ModalActionEntrega, "¿Deseas guardar esta gestión de entrega?"); err != nil {
		return f.snapshotLocked(), err
	}
	f.message = ""
	return f.snapshotLocked(), nil
}

// ConfirmEntrega ejecuta la acción confirmada en el modal
// Éxito consolida el registro devuelto, reinicia el borrador y deja el
// modal en success; un fallo deja el modal en error y conserva el
// borrador para reintentar
func (s *EntregaService) ConfirmEntrega(ctx context.Context, session *models.Session) (FormSnapshot, error) {
	f := s.form(session)

	if err := f.beginNetwork(); err != nil {
		return f.Snapshot(), err
	}
	defer f.endNetwork()

	f.mu.Lock()
	if f.modal.Phase != ModalConfirm || f.modal.Action != constants.ModalActionEntrega {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, ErrNoPendingAction
	}
	if err := f.modal.BeginLoading(); err != nil {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, err
	}
	request, err := f.draft.ToRequest(time.Now(), s.slotMinutes())
	if err != nil {
		_ = f.modal.Fail(MsgGuardarFallido)
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, err
	}
	f.mu.Unlock()

	token, err := s.sessions.BackendToken(session)
	if err != nil {
		f.mu.Lock()
		_ = f.modal.Fail(MsgSesionVencida)
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, err
	}

	saved, err := s.backend.SaveEntrega(ctx, token, request)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		message := MsgGuardarFallido
		if be, ok := eticos.AsBackendError(err); ok {
			message = be.Message
		}
		_ = f.modal.Fail(message)
		logger.Warnw("entrega_save_failed",
			"session_id", session.ID,
			"radicado", request.RegisteredTypeNumber,
			"error", err,
		)
		return f.snapshotLocked(), nil
	}

	s.stores.Get(session.ID).AddOrUpdate(*saved)
	f.draft.Reset()
	f.selected = nil
	f.search = ""
	f.message = ""
	_ = f.modal.Succeed(MsgEntregaGuardada)

	logger.Infow("entrega_saved",
		"session_id", session.ID,
		"management_id", saved.ManagementID,
		"call_result", saved.CallResult,
	)
	return f.snapshotLocked(), nil
}

// DismissModal cierra el modal (cancelar en confirm, cerrar en success/error)
// Mientras está en loading el descarte se rechaza
func (s *EntregaService) DismissModal(session *models.Session) (FormSnapshot, error) {
	f := s.form(session)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.modal.Dismiss(); err != nil {
		return f.snapshotLocked(), err
	}
	f.pendingPatient = nil
	return f.snapshotLocked(), nil
}

// History proyección filtrada del historial de la sesión
func (s *EntregaService) History(session *models.Session, term string) []eticos.SavedEntrega {
	return s.stores.Get(session.ID).Filter(term)
}

// RefreshHistory reemplaza el historial con la lista del backend
func (s *EntregaService) RefreshHistory(ctx context.Context, session *models.Session) (int, error) {
	token, err := s.sessions.BackendToken(session)
	if err != nil {
		return 0, err
	}
	list, err := s.backend.ListEntregas(ctx, token, session.PharmacyCode)
	if err != nil {
		return 0, err
	}
	s.stores.Get(session.ID).ReplaceAll(list)
	s.sessions.MarkRefreshed(session)
	logger.Infow("history_refreshed",
		"session_id", session.ID,
		"pharmacy_code", session.PharmacyCode,
		"count", len(list),
	)
	return len(list), nil
}

// UpdateCallResult cambia el resultado de llamada de un registro retenido
func (s *EntregaService) UpdateCallResult(session *models.Session, managementID int, result string, deliveryDate *string) error {
	if !constants.IsValidCallResult(result) {
		return fmt.Errorf("%w: resultado de llamada %q", ErrValidation, result)
	}
	if deliveryDate != nil && strings.TrimSpace(*deliveryDate) != "" {
		if _, err := ParseFecha(*deliveryDate); err != nil {
			return fmt.Errorf("%w: fecha de domicilio %q", ErrValidation, *deliveryDate)
		}
	}
	if !s.stores.Get(session.ID).UpdateCallResult(managementID, result, deliveryDate) {
		return fmt.Errorf("%w: managementId %d", ErrRecordNotFound, managementID)
	}
	return nil
}
