package service

import "strings"

// Address dirección estructurada del paciente
type Address struct {
	TipoVia             string `json:"tipoVia"`
	NumeroVia           string `json:"numeroVia"`
	ComplementoVia      string `json:"complementoVia"`
	Barrio              string `json:"barrio"`
	DetallesAdicionales string `json:"detallesAdicionales"`
	Municipio           string `json:"municipio"`
	Departamento        string `json:"departamento"`
}

// Empty indica si no se diligenció ningún campo
func (a Address) Empty() bool {
	return strings.TrimSpace(a.TipoVia) == "" &&
		strings.TrimSpace(a.NumeroVia) == "" &&
		strings.TrimSpace(a.ComplementoVia) == "" &&
		strings.TrimSpace(a.Barrio) == "" &&
		strings.TrimSpace(a.DetallesAdicionales) == "" &&
		strings.TrimSpace(a.Municipio) == "" &&
		strings.TrimSpace(a.Departamento) == ""
}

// FormatAddress compone la dirección en una sola línea
// "CL 10 #5-20, Barrio Centro, detalles, Medellín, Antioquia"
func FormatAddress(a Address) string {
	principal := joinNonEmpty(" ", a.TipoVia, a.NumeroVia, a.ComplementoVia)

	var barrio string
	if strings.TrimSpace(a.Barrio) != "" {
		barrio = "Barrio " + strings.TrimSpace(a.Barrio)
	}

	detalles := strings.TrimSpace(a.DetallesAdicionales)
	ciudadYDepto := joinNonEmpty(", ", a.Municipio, a.Departamento)

	return joinNonEmpty(", ", principal, barrio, detalles, ciudadYDepto)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, sep)
}
