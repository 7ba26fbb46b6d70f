package service

import "testing"

func TestFormatAddressComplete(t *testing.T) {
	addr := Address{
		TipoVia:             "CL",
		NumeroVia:           "10",
		ComplementoVia:      "#5-20",
		Barrio:              "Centro",
		DetallesAdicionales: "Apto 301",
		Municipio:           "Medellín",
		Departamento:        "Antioquia",
	}
	want := "CL 10 #5-20, Barrio Centro, Apto 301, Medellín, Antioquia"
	if got := FormatAddress(addr); got != want {
		t.Fatalf("FormatAddress = %q, want %q", got, want)
	}
}

func TestFormatAddressPartial(t *testing.T) {
	addr := Address{
		TipoVia:   "KR",
		NumeroVia: "45",
		Municipio: "Bogotá",
	}
	want := "KR 45, Bogotá"
	if got := FormatAddress(addr); got != want {
		t.Fatalf("FormatAddress = %q, want %q", got, want)
	}

	if got := FormatAddress(Address{}); got != "" {
		t.Fatalf("empty address should format to empty string, got %q", got)
	}
	if !(Address{}).Empty() {
		t.Fatalf("zero address should be empty")
	}
	if (Address{Barrio: "Prado"}).Empty() {
		t.Fatalf("address with barrio should not be empty")
	}
}
