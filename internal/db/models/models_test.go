package models

import (
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// ActivityAction
// ---------------------------------------------------------------------------

func TestActivityAction_Verb(t *testing.T) {
	tests := []struct {
		action ActivityAction
		want   string
	}{
		{ActionCreated, "created"},
		{ActionUpdated, "updated"},
		{ActionDeleted, "deleted"},
		{ActivityAction("RESTORED"), "RESTORED"},
	}
	for _, tt := range tests {
		if got := tt.action.Verb(); got != tt.want {
			t.Errorf("%s.Verb() = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestActivityAction_Valid(t *testing.T) {
	for _, a := range []ActivityAction{ActionCreated, ActionUpdated, ActionDeleted} {
		if !a.Valid() {
			t.Errorf("%s.Valid() = false, want true", a)
		}
	}
	if ActivityAction("created").Valid() {
		t.Error("lower-case action should not be valid")
	}
}

// ---------------------------------------------------------------------------
// AuditFields
// ---------------------------------------------------------------------------

func TestAuditFields_NullColumnsAreNil(t *testing.T) {
	a := Alumno{ID: 7, Matricula: "21030456", Nombre: "Ana", ApellidoPaterno: "López", CarreraID: 3}
	fields := a.AuditFields()

	for _, col := range []string{"apellido_materno", "email", "curp"} {
		v, ok := fields[col]
		if !ok {
			t.Errorf("AuditFields() missing %q", col)
			continue
		}
		if v != nil {
			t.Errorf("AuditFields()[%q] = %v, want nil", col, v)
		}
	}
	if fields["carrera_id"] != int64(3) {
		t.Errorf("carrera_id = %v (%T), want int64(3)", fields["carrera_id"], fields["carrera_id"])
	}
}

func TestAuditFields_DerefsPointers(t *testing.T) {
	card := "4111111111111111"
	paid := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := Pago{ID: 1, AlumnoID: 2, Concepto: "Reinscripción", Monto: 1850, CardNumber: &card, FechaPago: &paid}
	fields := p.AuditFields()

	if fields["card_number"] != card {
		t.Errorf("card_number = %v, want %q", fields["card_number"], card)
	}
	if fields["cvv"] != nil {
		t.Errorf("cvv = %v, want nil", fields["cvv"])
	}
	if got, ok := fields["fecha_pago"].(time.Time); !ok || !got.Equal(paid) {
		t.Errorf("fecha_pago = %v, want %v", fields["fecha_pago"], paid)
	}
}

func TestAuditFields_ColumnsMatchDBTags(t *testing.T) {
	// Every entity must report its id and timestamps so the tracked repository
	// can strip them from INSERT/UPDATE column lists.
	entities := []interface{ AuditFields() map[string]any }{
		Carrera{}, Alumno{}, Profesor{}, Materia{}, Periodo{}, Grupo{}, Inscripcion{},
		Calificacion{}, Asistencia{}, FactorRiesgo{}, AlumnoFactorRiesgo{}, Pago{}, User{},
	}
	for _, e := range entities {
		fields := e.AuditFields()
		for _, col := range []string{"id", "created_at", "updated_at"} {
			if _, ok := fields[col]; !ok {
				t.Errorf("%T.AuditFields() missing %q", e, col)
			}
		}
	}
}

func TestUser_AuditExcluded(t *testing.T) {
	excluded := User{}.AuditExcluded()
	if len(excluded) != 1 || excluded[0] != "remember_token" {
		t.Errorf("AuditExcluded() = %v, want [remember_token]", excluded)
	}
}
