package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/entregas-next/internal/constants"
	"github.com/entregas-next/internal/eticos"
)

// EntregaDraft borrador de una gestión de entrega en edición
// Vive en la sesión de formulario; nunca se persiste localmente
type EntregaDraft struct {
	RegisteredTypeNumber string  `json:"registeredTypeNumber"`
	PatientName          string  `json:"patientName"`
	Identification       string  `json:"identification"`
	Phones               string  `json:"phones"` // crudo del backend, puede venir "tel1, tel2"
	Email                *string `json:"email"`
	Address              string  `json:"address"`
	NumberFormula        string  `json:"numberFormula"`
	DeliveryDate         *string `json:"deliveryDate"`
	DeliveryTime         *string `json:"deliveryTime"`
	PackageType          string  `json:"packageType"`
	CallResult           string  `json:"callResult"`
	Notes                *string `json:"notes"`
	IsUrgent             bool    `json:"isUrgent"`
	PharmacistID         string  `json:"pharmacistId"`
}

// NewDraft crea un borrador vacío para el regente dado
// El resultado de llamada arranca sin elegir; lo fija el regente
func NewDraft(pharmacistID string) EntregaDraft {
	return EntregaDraft{
		PackageType:  constants.PackageTypeGenerico,
		PharmacistID: pharmacistID,
	}
}

// Reset descarta el borrador conservando el regente
func (d *EntregaDraft) Reset() {
	*d = NewDraft(d.PharmacistID)
}

// HasPatient indica si el borrador tiene paciente hidratado
func (d *EntregaDraft) HasPatient() bool {
	return strings.TrimSpace(d.RegisteredTypeNumber) != "" &&
		strings.TrimSpace(d.PatientName) != ""
}

// HydratePatient hidrata solo la instantánea del paciente desde la fórmula
// Los campos de gestión (resultado, fechas, empaque) no se tocan
func (d *EntregaDraft) HydratePatient(fp *eticos.FormulaPatient) {
	if fp == nil {
		return
	}
	d.RegisteredTypeNumber = fp.RegisteredTypeNumber
	d.PatientName = fp.Name
	d.Identification = fp.Identification
	if fp.Phones != nil {
		d.Phones = strings.TrimSpace(*fp.Phones)
	} else {
		d.Phones = ""
	}
	d.Email = fp.Email
	if fp.Address != nil {
		d.Address = strings.TrimSpace(*fp.Address)
	} else {
		d.Address = ""
	}
	d.NumberFormula = fp.NumberFormula
}

// HydrateRecord carga un registro del historial para reenvío o corrección
func (d *EntregaDraft) HydrateRecord(rec eticos.SavedEntrega) {
	d.RegisteredTypeNumber = rec.RegisteredTypeNumber
	d.PatientName = rec.PatientName
	d.Identification = rec.Identification
	d.Phones = rec.PrimaryPhone
	if rec.SecondaryPhone != nil && strings.TrimSpace(*rec.SecondaryPhone) != "" {
		d.Phones = rec.PrimaryPhone + ", " + strings.TrimSpace(*rec.SecondaryPhone)
	}
	d.Email = rec.Email
	d.Address = rec.Address
	d.DeliveryDate = rec.DeliveryDate
	d.DeliveryTime = rec.DeliveryTime
	d.PackageType = rec.PackageType
	d.CallResult = rec.CallResult
	d.Notes = rec.Notes
	d.IsUrgent = rec.IsUrgent
}

// DraftUpdate cambios parciales sobre el borrador
// Solo los campos no nulos se aplican, en el orden del reductor
type DraftUpdate struct {
	CallResult   *string `json:"callResult"`
	DeliveryDate *string `json:"deliveryDate"`
	DeliveryTime *string `json:"deliveryTime"`
	PackageType  *string `json:"packageType"`
	IsUrgent     *bool   `json:"isUrgent"`
	Notes        *string `json:"notes"`
	Email        *string `json:"email"`
}

// Apply aplica los cambios al borrador
// Cambiar el resultado a algo distinto de confirmado (o quitarlo) limpia
// fecha, hora, urgencia y vuelve el empaque a genérico
func (d *EntregaDraft) Apply(update DraftUpdate) error {
	if update.CallResult != nil {
		value := strings.TrimSpace(*update.CallResult)
		if value != "" && !constants.IsValidCallResult(value) {
			return fmt.Errorf("%w: resultado de llamada %q", ErrValidation, value)
		}
		if d.CallResult != value && value != constants.CallResultConfirmado {
			d.DeliveryDate = nil
			d.DeliveryTime = nil
			d.PackageType = constants.PackageTypeGenerico
			d.IsUrgent = false
		}
		d.CallResult = value
	}
	if update.DeliveryDate != nil {
		value := strings.TrimSpace(*update.DeliveryDate)
		if value == "" {
			d.DeliveryDate = nil
		} else {
			if _, err := ParseFecha(value); err != nil {
				return fmt.Errorf("%w: fecha de domicilio %q", ErrValidation, value)
			}
			d.DeliveryDate = &value
		}
	}
	if update.DeliveryTime != nil {
		value := strings.TrimSpace(*update.DeliveryTime)
		if value == "" {
			d.DeliveryTime = nil
		} else {
			d.DeliveryTime = &value
		}
	}
	if update.PackageType != nil {
		value := strings.TrimSpace(*update.PackageType)
		if !constants.IsValidPackageType(value) {
			return fmt.Errorf("%w: tipo de empaque %q", ErrValidation, value)
		}
		d.PackageType = value
	}
	if update.IsUrgent != nil {
		d.IsUrgent = *update.IsUrgent
	}
	if update.Notes != nil {
		value := strings.TrimSpace(*update.Notes)
		if value == "" {
			d.Notes = nil
		} else {
			d.Notes = &value
		}
	}
	if update.Email != nil {
		value := strings.TrimSpace(*update.Email)
		if value == "" {
			d.Email = nil
		} else {
			d.Email = &value
		}
	}
	return nil
}

// ValidateForSubmit valida el borrador antes de abrir el modal
// Devuelve el mensaje de error para el regente, o cadena vacía
func (d *EntregaDraft) ValidateForSubmit() string {
	if !d.HasPatient() {
		return MsgCamposObligatorios
	}
	if d.CallResult == constants.CallResultConfirmado {
		if d.DeliveryDate == nil || strings.TrimSpace(*d.DeliveryDate) == "" {
			return MsgFechaDomicilioObligatoria
		}
	}
	return ""
}

// ToRequest arma la petición al backend normalizando el borrador
// Estampa fecha y hora de gestión con el reloj local, separa los
// teléfonos por coma y ancla la hora de domicilio a la franja dada
func (d *EntregaDraft) ToRequest(now time.Time, slotMinutes int) (eticos.EntregaRequest, error) {
	primary, secondary := SplitPhones(d.Phones)

	req := eticos.EntregaRequest{
		RegisteredTypeNumber: strings.TrimSpace(d.RegisteredTypeNumber),
		PatientName:          strings.TrimSpace(d.PatientName),
		Identification:       strings.TrimSpace(d.Identification),
		PrimaryContact:       primary,
		Address:              strings.TrimSpace(d.Address),
		ManagementDate:       FormatFecha(now),
		ManagementTime:       FormatHora(now),
		PackageType:          d.PackageType,
		CallResult:           d.CallResult,
		PharmacistID:         d.PharmacistID,
		IsUrgent:             d.IsUrgent,
	}
	if secondary != "" {
		req.SecondaryContact = &secondary
	}
	if d.Email != nil && strings.TrimSpace(*d.Email) != "" {
		email := strings.TrimSpace(*d.Email)
		req.Email = &email
	}
	if d.Notes != nil && strings.TrimSpace(*d.Notes) != "" {
		notes := strings.TrimSpace(*d.Notes)
		req.Notes = &notes
	}
	if d.DeliveryDate != nil && strings.TrimSpace(*d.DeliveryDate) != "" {
		date := strings.TrimSpace(*d.DeliveryDate)
		req.DeliveryDate = &date
	}
	if d.DeliveryTime != nil && strings.TrimSpace(*d.DeliveryTime) != "" {
		hora, err := NormalizeHoraDomicilio(*d.DeliveryTime, slotMinutes)
		if err != nil {
			return eticos.EntregaRequest{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		req.DeliveryTime = &hora
	}
	return req, nil
}
