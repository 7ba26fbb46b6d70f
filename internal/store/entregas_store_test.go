package store

import (
	"fmt"
	"testing"

	"github.com/entregas-next/internal/eticos"
)

func rec(id int, radicado string) eticos.SavedEntrega {
	return eticos.SavedEntrega{
		ManagementID:         id,
		RegisteredTypeNumber: radicado,
		PatientName:          fmt.Sprintf("Paciente %d", id),
		Address:              "CL 10 #5-20",
		PrimaryPhone:         "3001234567",
		CallResult:           "confirmado",
	}
}

func TestAddOrUpdateReplacesInPlace(t *testing.T) {
	s := New(20)
	s.AddOrUpdate(rec(1, "CC-1"))
	s.AddOrUpdate(rec(2, "CC-2"))
	s.AddOrUpdate(rec(3, "CC-3"))

	updated := rec(2, "CC-2")
	updated.CallResult = "reprogramar"
	s.AddOrUpdate(updated)

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("len want 3 got %d", len(list))
	}
	// El registro actualizado conserva su posición, no se reordena
	if list[1].ManagementID != 2 || list[1].CallResult != "reprogramar" {
		t.Fatalf("expected in-place update at index 1, got %+v", list[1])
	}
	if list[0].ManagementID != 3 {
		t.Fatalf("newest record should stay first, got %d", list[0].ManagementID)
	}
}

func TestAddOrUpdatePrependsAndCaps(t *testing.T) {
	s := New(5)
	for i := 1; i <= 7; i++ {
		s.AddOrUpdate(rec(i, fmt.Sprintf("CC-%d", i)))
	}

	list := s.List()
	if len(list) != 5 {
		t.Fatalf("len want 5 got %d", len(list))
	}
	if list[0].ManagementID != 7 {
		t.Fatalf("most recent should be first, got %d", list[0].ManagementID)
	}
	// Los más antiguos se descartan por el tope
	for _, r := range list {
		if r.ManagementID <= 2 {
			t.Fatalf("record %d should have been dropped", r.ManagementID)
		}
	}
}

func TestReplaceAllDeduplicates(t *testing.T) {
	s := New(20)
	s.AddOrUpdate(rec(1, "CC-1"))

	dup := rec(5, "CC-5")
	dup.CallResult = "rechazado"
	s.ReplaceAll([]eticos.SavedEntrega{rec(5, "CC-5"), rec(6, "CC-6"), dup})

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("len want 2 got %d", len(list))
	}
	if list[0].ManagementID != 5 || list[0].CallResult != "rechazado" {
		t.Fatalf("duplicate id should keep last write, got %+v", list[0])
	}
}

func TestFindAndClear(t *testing.T) {
	s := New(20)
	s.AddOrUpdate(rec(1, "CC-1"))
	s.AddOrUpdate(rec(2, "CC-2"))

	got, ok := s.Find(1)
	if !ok || got.ManagementID != 1 {
		t.Fatalf("find failed: %+v ok=%v", got, ok)
	}
	if _, ok := s.Find(99); ok {
		t.Fatalf("unknown id should report false")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("clear should drop all records")
	}
	if _, ok := s.Find(1); ok {
		t.Fatalf("find after clear should fail")
	}
}

func TestFilterMatchesSeveralFields(t *testing.T) {
	s := New(20)
	r1 := rec(1, "CC-1001")
	r1.PatientName = "María Gómez"
	r2 := rec(2, "TI-2002")
	r2.Address = "KR 45 #12-30 Barrio Centro"
	sec := "3109998877"
	r2.SecondaryPhone = &sec
	s.AddOrUpdate(r1)
	s.AddOrUpdate(r2)

	if got := s.Filter("maría"); len(got) != 1 || got[0].ManagementID != 1 {
		t.Fatalf("filter by patient failed: %+v", got)
	}
	if got := s.Filter("barrio centro"); len(got) != 1 || got[0].ManagementID != 2 {
		t.Fatalf("filter by address failed: %+v", got)
	}
	if got := s.Filter("3109998877"); len(got) != 1 || got[0].ManagementID != 2 {
		t.Fatalf("filter by secondary phone failed: %+v", got)
	}
	if got := s.Filter("  "); len(got) != 2 {
		t.Fatalf("blank filter should return everything, got %d", len(got))
	}
	if got := s.Filter("zzz"); len(got) != 0 {
		t.Fatalf("unmatched filter should be empty, got %+v", got)
	}
}

func TestUpdateCallResult(t *testing.T) {
	s := New(20)
	r := rec(9, "CC-9")
	prev := "2026-09-01"
	r.DeliveryDate = &prev
	s.AddOrUpdate(r)

	if ok := s.UpdateCallResult(9, "reprogramar", nil); !ok {
		t.Fatalf("update should succeed")
	}
	list := s.List()
	if list[0].CallResult != "reprogramar" {
		t.Fatalf("call result not updated: %+v", list[0])
	}
	if list[0].DeliveryDate == nil || *list[0].DeliveryDate != prev {
		t.Fatalf("nil date should keep previous value: %+v", list[0].DeliveryDate)
	}

	newDate := "2026-09-15"
	if ok := s.UpdateCallResult(9, "confirmado", &newDate); !ok {
		t.Fatalf("update should succeed")
	}
	list = s.List()
	if list[0].DeliveryDate == nil || *list[0].DeliveryDate != newDate {
		t.Fatalf("date should be replaced: %+v", list[0].DeliveryDate)
	}

	if ok := s.UpdateCallResult(404, "rechazado", nil); ok {
		t.Fatalf("unknown id should report false")
	}
}

func TestRegistryPerSession(t *testing.T) {
	reg := NewRegistry(20)
	a := reg.Get("sess-a")
	b := reg.Get("sess-b")
	if a == b {
		t.Fatalf("sessions must not share stores")
	}
	a.AddOrUpdate(rec(1, "CC-1"))
	if b.Len() != 0 {
		t.Fatalf("store isolation broken")
	}
	if reg.Get("sess-a") != a {
		t.Fatalf("expected same store on second get")
	}
	reg.Remove("sess-a")
	if reg.Get("sess-a") == a {
		t.Fatalf("removed store should be recreated")
	}
}
