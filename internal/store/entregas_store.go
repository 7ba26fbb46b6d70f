package store

import (
	"strings"
	"sync"

	"github.com/entregas-next/internal/eticos"
)

// DefaultMaxRecords tope por defecto de registros retenidos por sesión
const DefaultMaxRecords = 20

// Store historial en memoria de gestiones de entrega de una sesión
// Consolida por managementId: un registro existente se reemplaza en su
// posición; uno nuevo se antepone. La lista se recorta al tope configurado
type Store struct {
	mu      sync.RWMutex
	max     int
	records []eticos.SavedEntrega
}

// New crea un store con el tope dado
func New(max int) *Store {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	return &Store{max: max}
}

// AddOrUpdate consolida un registro por managementId
func (s *Store) AddOrUpdate(rec eticos.SavedEntrega) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ManagementID == rec.ManagementID {
			s.records[i] = rec
			return
		}
	}

	s.records = append([]eticos.SavedEntrega{rec}, s.records...)
	if len(s.records) > s.max {
		s.records = s.records[:s.max]
	}
}

// ReplaceAll reemplaza el historial completo (refresco desde el backend)
func (s *Store) ReplaceAll(recs []eticos.SavedEntrega) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]eticos.SavedEntrega, 0, len(recs))
	seen := make(map[int]int, len(recs))
	for _, rec := range recs {
		if idx, ok := seen[rec.ManagementID]; ok {
			out[idx] = rec
			continue
		}
		seen[rec.ManagementID] = len(out)
		out = append(out, rec)
	}
	if len(out) > s.max {
		out = out[:s.max]
	}
	s.records = out
}

// Find devuelve el registro con el managementId dado
// La selección vive en la sesión de formulario, no aquí
func (s *Store) Find(managementID int) (eticos.SavedEntrega, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ManagementID == managementID {
			return rec, true
		}
	}
	return eticos.SavedEntrega{}, false
}

// Clear vacía el historial (cierre de sesión)
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// List devuelve una copia del historial en orden (más reciente primero)
func (s *Store) List() []eticos.SavedEntrega {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]eticos.SavedEntrega, len(s.records))
	copy(out, s.records)
	return out
}

// Len cantidad de registros retenidos
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Filter proyección del historial que coincide con el término
// Busca sin distinguir mayúsculas en radicado, paciente, dirección y teléfonos
func (s *Store) Filter(term string) []eticos.SavedEntrega {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.List()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]eticos.SavedEntrega, 0)
	for _, rec := range s.records {
		if matchesTerm(rec, term) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesTerm(rec eticos.SavedEntrega, term string) bool {
	fields := []string{
		rec.RegisteredTypeNumber,
		rec.PatientName,
		rec.Identification,
		rec.Address,
		rec.PrimaryPhone,
	}
	if rec.SecondaryPhone != nil {
		fields = append(fields, *rec.SecondaryPhone)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// UpdateCallResult cambia el resultado de llamada de un registro retenido
// deliveryDate nil conserva la fecha existente
func (s *Store) UpdateCallResult(managementID int, result string, deliveryDate *string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ManagementID == managementID {
			s.records[i].CallResult = result
			if deliveryDate != nil {
				s.records[i].DeliveryDate = deliveryDate
			}
			return true
		}
	}
	return false
}
