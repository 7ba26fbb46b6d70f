package repository

import (
	"errors"
	"time"

	"github.com/entregas-next/internal/models"

	"gorm.io/gorm"
)

// SessionRepository acceso a datos de sesiones
type SessionRepository interface {
	GetByID(id string) (*models.Session, error)
	ListActive(now time.Time) ([]models.Session, error)
	Count() (int64, error)
	Create(session *models.Session) error
	Update(session *models.Session) error
	Delete(id string) error
	DeleteExpired(now time.Time) ([]string, error)
}

// GormSessionRepository implementación GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository crea el repositorio de sesiones
func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// GetByID obtiene una sesión por id
func (r *GormSessionRepository) GetByID(id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// ListActive lista sesiones no vencidas
func (r *GormSessionRepository) ListActive(now time.Time) ([]models.Session, error) {
	sessions := make([]models.Session, 0)
	err := r.db.
		Where("expires_at > ?", now).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Count cuenta las sesiones
func (r *GormSessionRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Session{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create crea una sesión
func (r *GormSessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

// Update actualiza una sesión
func (r *GormSessionRepository) Update(session *models.Session) error {
	return r.db.Save(session).Error
}

// Delete elimina una sesión
func (r *GormSessionRepository) Delete(id string) error {
	if id == "" {
		return nil
	}
	return r.db.Delete(&models.Session{}, "id = ?", id).Error
}

// DeleteExpired elimina sesiones vencidas y devuelve sus ids
func (r *GormSessionRepository) DeleteExpired(now time.Time) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Session{}).
		Where("expires_at <= ?", now).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.db.Delete(&models.Session{}, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
