package models

import (
	"encoding/json"
	"time"
)

// Session sesión de un regente del portal
// Conserva el alcance del contrato y la farmacia entregados por el backend
// en el inicio de sesión; el token del backend se guarda sellado
type Session struct {
	ID            string     `gorm:"primarykey;size:36" json:"id"` // uuid
	UserID        int        `gorm:"index;not null" json:"user_id"`
	Name          string     `gorm:"size:191" json:"name"`
	Nit           string     `gorm:"size:64" json:"nit"`
	Modality      string     `gorm:"size:64" json:"modality"`
	Program       int        `json:"program"`
	Roles         string     `gorm:"size:255" json:"-"`   // arreglo main del backend, serializado JSON
	SealedToken   []byte     `gorm:"type:blob" json:"-"`  // token bearer del backend, sellado en reposo
	Contract      string     `gorm:"size:64" json:"contract"`
	PharmacyCode  string     `gorm:"size:64;index" json:"pharmacy_code"`
	PharmacyName  string     `gorm:"size:191" json:"pharmacy_name"`
	PharmacyCity  string     `gorm:"size:128" json:"pharmacy_city"`
	ExpiresAt     time.Time  `gorm:"index" json:"expires_at"`
	LastRefreshAt *time.Time `json:"last_refresh_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName nombre de tabla
func (Session) TableName() string {
	return "sessions"
}

// RoleList decodifica la lista de roles
func (s *Session) RoleList() []string {
	if s == nil || s.Roles == "" {
		return nil
	}
	var roles []string
	if err := json.Unmarshal([]byte(s.Roles), &roles); err != nil {
		return nil
	}
	return roles
}

// SetRoleList serializa la lista de roles
func (s *Session) SetRoleList(roles []string) {
	if len(roles) == 0 {
		s.Roles = ""
		return
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		s.Roles = ""
		return
	}
	s.Roles = string(raw)
}

// Expired indica si la sesión venció
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
