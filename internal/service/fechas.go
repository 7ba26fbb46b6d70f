package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	fechaLayout = "2006-01-02" // yyyy-MM-dd
	horaLayout  = "15:04:05"   // HH:mm:ss
)

// FormatFecha fecha en formato yyyy-MM-dd
func FormatFecha(t time.Time) string {
	return t.Format(fechaLayout)
}

// FormatHora hora en formato HH:mm:ss
func FormatHora(t time.Time) string {
	return t.Format(horaLayout)
}

// PrettyHora recorta "16:30:00" a "16:30"
func PrettyHora(hora string) string {
	hora = strings.TrimSpace(hora)
	if len(hora) >= 5 {
		return hora[:5]
	}
	return hora
}

// ParseFecha valida una fecha yyyy-MM-dd
func ParseFecha(value string) (time.Time, error) {
	return time.Parse(fechaLayout, strings.TrimSpace(value))
}

// NormalizeHoraDomicilio lleva la hora de domicilio a la franja configurada
// Acepta "HH:mm" o "HH:mm:ss", ancla los minutos al múltiplo inferior de
// slotMinutes y pone los segundos en cero
func NormalizeHoraDomicilio(value string, slotMinutes int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("hora vacía")
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("hora inválida: %s", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("hora inválida: %s", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("hora inválida: %s", value)
	}

	if slotMinutes <= 0 || slotMinutes > 60 {
		slotMinutes = 30
	}
	minute = (minute / slotMinutes) * slotMinutes

	return fmt.Sprintf("%02d:%02d:00", hour, minute), nil
}

// SplitPhones separa un campo "tel1, tel2" en principal y secundario
// El backend puede entregar varios teléfonos unidos por coma
func SplitPhones(phones string) (primary string, secondary string) {
	parts := strings.Split(phones, ",")
	if len(parts) > 0 {
		primary = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		secondary = strings.TrimSpace(parts[1])
	}
	return primary, secondary
}
