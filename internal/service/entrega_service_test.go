package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/entregas-next/internal/authz"
	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/eticos"
	"github.com/entregas-next/internal/models"
	"github.com/entregas-next/internal/queue"
	"github.com/entregas-next/internal/repository"
	"github.com/entregas-next/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeEticos backend Eticos simulado para los flujos del formulario
type fakeEticos struct {
	mu       sync.Mutex
	nextID   int
	saved    []eticos.SavedEntrega
	saveFail bool
	patchOK  bool
}

func (f *fakeEticos) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/formula", f.handleFormula)
	mux.HandleFunc("/management-entregas", f.handleEntregas)
	mux.HandleFunc("/patient/", f.handlePatient)
	return mux
}

func writeEnvelope(w http.ResponseWriter, success bool, data interface{}, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]interface{}{"success": success, "data": data}
	if errMsg != "" {
		body["error"] = errMsg
	} else {
		body["error"] = nil
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeEticos) handleFormula(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("registeredTypeNumber") != "CC-123456" {
		writeEnvelope(w, false, nil, "")
		return
	}
	phones := "3001234567, 6015550000"
	email := "ana@example.com"
	address := "CL 10 #5-20, Medellín"
	writeEnvelope(w, true, eticos.FormulaPatient{
		RegisteredTypeNumber: "CC-123456",
		Identification:       "123456",
		Name:                 "Ana Pérez",
		Phones:               &phones,
		Email:                &email,
		Address:              &address,
		NumberFormula:        "F-991",
	}, "")
}

func (f *fakeEticos) handleEntregas(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodGet {
		writeEnvelope(w, true, f.saved, "")
		return
	}

	if f.saveFail {
		writeEnvelope(w, false, nil, "Error al guardar gestiones en la BD")
		return
	}

	var payload struct {
		Entrega eticos.EntregaRequest `json:"entrega"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeEnvelope(w, false, nil, "cuerpo inválido")
		return
	}
	f.nextID++
	rec := eticos.SavedEntrega{
		RegisteredTypeNumber: payload.Entrega.RegisteredTypeNumber,
		PatientName:          payload.Entrega.PatientName,
		Identification:       payload.Entrega.Identification,
		PrimaryPhone:         payload.Entrega.PrimaryContact,
		SecondaryPhone:       payload.Entrega.SecondaryContact,
		Email:                payload.Entrega.Email,
		Address:              payload.Entrega.Address,
		ManagementDate:       payload.Entrega.ManagementDate,
		ManagementTime:       payload.Entrega.ManagementTime,
		DeliveryDate:         payload.Entrega.DeliveryDate,
		DeliveryTime:         payload.Entrega.DeliveryTime,
		PackageType:          payload.Entrega.PackageType,
		CallResult:           payload.Entrega.CallResult,
		Notes:                payload.Entrega.Notes,
		PharmacistID:         payload.Entrega.PharmacistID,
		IsUrgent:             payload.Entrega.IsUrgent,
		SentToHome:           payload.Entrega.CallResult == constants.CallResultConfirmado,
		ManagementID:         f.nextID,
	}
	f.saved = append(f.saved, rec)
	writeEnvelope(w, true, rec, "")
}

func (f *fakeEticos) handlePatient(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.patchOK = true
	f.mu.Unlock()
	writeEnvelope(w, true, map[string]string{"status": "ok"}, "")
}

type portalFixture struct {
	sessions *SessionService
	entregas *EntregaService
	patients *PatientService
	session  *models.Session
	backend  *fakeEticos
}

func setupPortal(t *testing.T) *portalFixture {
	t.Helper()

	fake := &fakeEticos{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Session.JWTSecret = "secreto-de-prueba"
	cfg.Session.ExpireHours = 1
	cfg.Eticos.BaseURL = srv.URL
	cfg.Eticos.AuthURL = srv.URL
	cfg.Eticos.TimeoutMS = 5000
	cfg.Delivery.TimeSlotMinutes = 30
	cfg.History.MaxRecords = 20

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	repo := repository.NewSessionRepository(db)
	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("authz service failed: %v", err)
	}
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	sealer, err := NewSealer("clave-de-prueba")
	if err != nil {
		t.Fatalf("sealer failed: %v", err)
	}

	stores := store.NewRegistry(cfg.History.MaxRecords)
	forms := NewFormRegistry()
	backendClient := eticos.NewClient(cfg.Eticos)

	sessions := NewSessionService(cfg, repo, backendClient, authzSvc, queueClient, stores, forms, sealer)
	entregas := NewEntregaService(cfg, backendClient, sessions, stores, forms)
	patients := NewPatientService(cfg, backendClient, sessions, forms)

	sealed, err := sealer.Seal("token-del-backend")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	session := &models.Session{
		ID:           uuid.NewString(),
		UserID:       42,
		Name:         "Regente Prueba",
		PharmacyCode: "F01",
		SealedToken:  sealed,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	session.SetRoleList([]string{"REGENTE"})
	if err := repo.Create(session); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	return &portalFixture{
		sessions: sessions,
		entregas: entregas,
		patients: patients,
		session:  session,
		backend:  fake,
	}
}

func TestSearchEmptyQueryStaysLocal(t *testing.T) {
	fx := setupPortal(t)

	fx.entregas.SetSearch(fx.session, "   ")
	snap, err := fx.entregas.Search(context.Background(), fx.session)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if snap.ErrorMessage != MsgBusquedaVacia {
		t.Fatalf("message = %q", snap.ErrorMessage)
	}
	if snap.Draft.HasPatient() {
		t.Fatalf("draft should stay empty")
	}
}

func TestSearchHydratesPatient(t *testing.T) {
	fx := setupPortal(t)

	fx.entregas.SetSearch(fx.session, "CC-123456")
	snap, err := fx.entregas.Search(context.Background(), fx.session)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if snap.ErrorMessage != "" {
		t.Fatalf("unexpected message: %q", snap.ErrorMessage)
	}
	if snap.Draft.PatientName != "Ana Pérez" || snap.Draft.Identification != "123456" {
		t.Fatalf("draft not hydrated: %+v", snap.Draft)
	}
	if snap.Draft.Phones != "3001234567, 6015550000" {
		t.Fatalf("phones = %q", snap.Draft.Phones)
	}
}

func TestSearchNotFoundResetsDraft(t *testing.T) {
	fx := setupPortal(t)

	fx.backend.saved = []eticos.SavedEntrega{{
		RegisteredTypeNumber: "CC-123456",
		PatientName:          "Ana Pérez",
		Identification:       "123456",
		PrimaryPhone:         "3001234567",
		Address:              "CL 10 #5-20",
		PackageType:          constants.PackageTypeGenerico,
		CallResult:           constants.CallResultConfirmado,
		ManagementID:         7,
	}}
	if _, err := fx.entregas.RefreshHistory(context.Background(), fx.session); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := fx.entregas.Select(fx.session, 7); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	fx.entregas.SetSearch(fx.session, "CC-999999")
	snap, err := fx.entregas.Search(context.Background(), fx.session)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if snap.Draft.HasPatient() {
		t.Fatalf("failed search must reset the draft")
	}
	if snap.SelectedManagementID != nil {
		t.Fatalf("failed search must drop the selection, got %v", snap.SelectedManagementID)
	}
	if snap.ErrorMessage != MsgSinDatosPara("CC-999999") {
		t.Fatalf("message = %q", snap.ErrorMessage)
	}
}

func TestSubmitValidatesBeforeModal(t *testing.T) {
	fx := setupPortal(t)

	snap, err := fx.entregas.Submit(fx.session)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if snap.ErrorMessage != MsgCamposObligatorios {
		t.Fatalf("message = %q", snap.ErrorMessage)
	}
	if snap.Modal.State != ModalClosed {
		t.Fatalf("modal must stay closed on validation failure")
	}

	fx.entregas.SetSearch(fx.session, "CC-123456")
	if _, err := fx.entregas.Search(context.Background(), fx.session); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	// sin resultado de llamada elegido no se exige fecha de domicilio
	snap, err = fx.entregas.Submit(fx.session)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if snap.Modal.State != ModalConfirm {
		t.Fatalf("unset call result should allow submit, modal = %+v", snap.Modal)
	}
	if _, err := fx.entregas.DismissModal(fx.session); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}

	confirmado := constants.CallResultConfirmado
	if _, err := fx.entregas.UpdateDraft(fx.session, DraftUpdate{CallResult: &confirmado}); err != nil {
		t.Fatalf("update draft failed: %v", err)
	}
	snap, err = fx.entregas.Submit(fx.session)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if snap.ErrorMessage != MsgFechaDomicilioObligatoria {
		t.Fatalf("message = %q", snap.ErrorMessage)
	}
	if snap.Modal.State != ModalClosed {
		t.Fatalf("modal must stay closed when the date is missing")
	}

	date := "2025-04-01"
	if _, err := fx.entregas.UpdateDraft(fx.session, DraftUpdate{DeliveryDate: &date}); err != nil {
		t.Fatalf("update draft failed: %v", err)
	}
	snap, err = fx.entregas.Submit(fx.session)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if snap.Modal.State != ModalConfirm || snap.Modal.Action != constants.ModalActionEntrega {
		t.Fatalf("modal = %+v", snap.Modal)
	}
}

func TestConfirmEntregaSuccess(t *testing.T) {
	fx := setupPortal(t)
	ctx := context.Background()

	fx.entregas.SetSearch(fx.session, "CC-123456")
	if _, err := fx.entregas.Search(ctx, fx.session); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	confirmado := constants.CallResultConfirmado
	date := "2025-04-01"
	hora := "16:45"
	snapDraft, err := fx.entregas.UpdateDraft(fx.session, DraftUpdate{CallResult: &confirmado, DeliveryDate: &date, DeliveryTime: &hora})
	if err != nil {
		t.Fatalf("update draft failed: %v", err)
	}
	if snapDraft.DeliveryTimeDisplay != "16:45" {
		t.Fatalf("delivery time display = %q", snapDraft.DeliveryTimeDisplay)
	}
	if _, err := fx.entregas.Submit(fx.session); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	snap, err := fx.entregas.ConfirmEntrega(ctx, fx.session)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if snap.Modal.State != ModalSuccess || snap.Modal.Message != MsgEntregaGuardada {
		t.Fatalf("modal = %+v", snap.Modal)
	}
	if snap.Draft.HasPatient() {
		t.Fatalf("draft should reset after save")
	}

	history := fx.entregas.History(fx.session, "")
	if len(history) != 1 {
		t.Fatalf("history size = %d", len(history))
	}
	rec := history[0]
	if rec.PrimaryPhone != "3001234567" {
		t.Fatalf("primary phone = %q", rec.PrimaryPhone)
	}
	if rec.DeliveryTime == nil || *rec.DeliveryTime != "16:30:00" {
		t.Fatalf("delivery time = %v", rec.DeliveryTime)
	}
	if !rec.SentToHome {
		t.Fatalf("confirmed record should be sent to home")
	}
}

func TestConfirmEntregaBackendFailureKeepsDraft(t *testing.T) {
	fx := setupPortal(t)
	ctx := context.Background()

	fx.entregas.SetSearch(fx.session, "CC-123456")
	if _, err := fx.entregas.Search(ctx, fx.session); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	date := "2025-04-01"
	if _, err := fx.entregas.UpdateDraft(fx.session, DraftUpdate{DeliveryDate: &date}); err != nil {
		t.Fatalf("update draft failed: %v", err)
	}
	if _, err := fx.entregas.Submit(fx.session); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	fx.backend.mu.Lock()
	fx.backend.saveFail = true
	fx.backend.mu.Unlock()

	snap, err := fx.entregas.ConfirmEntrega(ctx, fx.session)
	if err != nil {
		t.Fatalf("confirm returned error: %v", err)
	}
	if snap.Modal.State != ModalError {
		t.Fatalf("modal state = %s", snap.Modal.State)
	}
	if snap.Modal.Message != "Error al guardar gestiones en la BD" {
		t.Fatalf("modal message = %q", snap.Modal.Message)
	}
	if !snap.Draft.HasPatient() {
		t.Fatalf("draft must survive a failed save")
	}
	if len(fx.entregas.History(fx.session, "")) != 0 {
		t.Fatalf("failed save must not touch the history")
	}
}

func TestConfirmWithoutPendingAction(t *testing.T) {
	fx := setupPortal(t)
	if _, err := fx.entregas.ConfirmEntrega(context.Background(), fx.session); !errors.Is(err, ErrNoPendingAction) {
		t.Fatalf("expected ErrNoPendingAction, got %v", err)
	}
}

func TestSelectHydratesAndUpdateCallResult(t *testing.T) {
	fx := setupPortal(t)

	secondary := "6015550000"
	hora := "16:30:00"
	fx.backend.saved = []eticos.SavedEntrega{{
		RegisteredTypeNumber: "CC-123456",
		PatientName:          "Ana Pérez",
		Identification:       "123456",
		PrimaryPhone:         "3001234567",
		SecondaryPhone:       &secondary,
		Address:              "CL 10 #5-20",
		PackageType:          constants.PackageTypeGenerico,
		CallResult:           constants.CallResultConfirmado,
		DeliveryTime:         &hora,
		ManagementID:         7,
	}}
	if _, err := fx.entregas.RefreshHistory(context.Background(), fx.session); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	snap, err := fx.entregas.Select(fx.session, 7)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if snap.SelectedManagementID == nil || *snap.SelectedManagementID != 7 {
		t.Fatalf("selected = %v", snap.SelectedManagementID)
	}
	if snap.Draft.PatientName != "Ana Pérez" || snap.SearchValue != "CC-123456" {
		t.Fatalf("draft not hydrated from record: %+v", snap.Draft)
	}
	// la hora guardada como HH:mm:ss se proyecta recortada a HH:mm
	if snap.DeliveryTimeDisplay != "16:30" {
		t.Fatalf("delivery time display = %q", snap.DeliveryTimeDisplay)
	}

	if _, err := fx.entregas.Select(fx.session, 99); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("missing record should fail, got %v", err)
	}

	if err := fx.entregas.UpdateCallResult(fx.session, 7, constants.CallResultReprogramar, nil); err != nil {
		t.Fatalf("update call result failed: %v", err)
	}
	if err := fx.entregas.UpdateCallResult(fx.session, 7, "tal-vez", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("invalid result should fail, got %v", err)
	}
	if err := fx.entregas.UpdateCallResult(fx.session, 99, constants.CallResultConfirmado, nil); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("missing record should fail, got %v", err)
	}

	history := fx.entregas.History(fx.session, "")
	if history[0].CallResult != constants.CallResultReprogramar {
		t.Fatalf("call result = %q", history[0].CallResult)
	}

	snap = fx.entregas.Deselect(fx.session)
	if snap.SelectedManagementID != nil || snap.Draft.HasPatient() {
		t.Fatalf("deselect should reset the form")
	}
}

func TestPatientUpdateFlow(t *testing.T) {
	fx := setupPortal(t)
	ctx := context.Background()

	fx.entregas.SetSearch(fx.session, "CC-123456")
	if _, err := fx.entregas.Search(ctx, fx.session); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	snap, err := fx.patients.BeginUpdate(fx.session, PatientUpdateInput{
		PrimaryPhone: "3019998877",
		Address: &Address{
			TipoVia:      "KR",
			NumeroVia:    "45",
			Barrio:       "Prado",
			Municipio:    "Medellín",
			Departamento: "Antioquia",
		},
	})
	if err != nil {
		t.Fatalf("begin update failed: %v", err)
	}
	if snap.Modal.State != ModalConfirm || snap.Modal.Action != constants.ModalActionPaciente {
		t.Fatalf("modal = %+v", snap.Modal)
	}

	snap, err = fx.patients.ConfirmUpdate(ctx, fx.session)
	if err != nil {
		t.Fatalf("confirm update failed: %v", err)
	}
	if snap.Modal.State != ModalSuccess || snap.Modal.Message != MsgPacienteActualizado {
		t.Fatalf("modal = %+v", snap.Modal)
	}
	if snap.Draft.Phones != "3019998877" {
		t.Fatalf("phones = %q", snap.Draft.Phones)
	}
	if snap.Draft.Address != "KR 45, Barrio Prado, Medellín, Antioquia" {
		t.Fatalf("address = %q", snap.Draft.Address)
	}

	fx.backend.mu.Lock()
	ok := fx.backend.patchOK
	fx.backend.mu.Unlock()
	if !ok {
		t.Fatalf("backend patch was not called")
	}
}

func TestPatientUpdateRequiresChanges(t *testing.T) {
	fx := setupPortal(t)
	ctx := context.Background()

	if _, err := fx.patients.BeginUpdate(fx.session, PatientUpdateInput{PrimaryPhone: "300"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("update without patient should fail, got %v", err)
	}

	fx.entregas.SetSearch(fx.session, "CC-123456")
	if _, err := fx.entregas.Search(ctx, fx.session); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if _, err := fx.patients.BeginUpdate(fx.session, PatientUpdateInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty update should fail, got %v", err)
	}
	if _, err := fx.patients.ConfirmUpdate(ctx, fx.session); !errors.Is(err, ErrNoPendingAction) {
		t.Fatalf("confirm without pending patch should fail, got %v", err)
	}
}
