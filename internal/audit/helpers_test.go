package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(
		Descriptor{Type: "Carrera", Table: "carreras", Label: "nombre", Plural: "carreras"},
		Descriptor{Type: "Alumno", Table: "alumnos", Label: "nombre || ' ' || apellido_paterno", Plural: "alumnos"},
		Descriptor{Type: "FactorRiesgo", Table: "factores_riesgo", Label: "nombre", Plural: "factores_riesgo"},
		Descriptor{Type: "AlumnoFactorRiesgo", Table: "alumno_factores_riesgo", Label: "'Factor #' || id", Plural: "alumno_factores_riesgo"},
		Descriptor{Type: "Pago", Table: "pagos", Label: "concepto", Plural: "pagos"},
		Descriptor{Type: "User", Table: "users", Label: "name", Plural: "users"},
	)
	require.NoError(t, err)
	return r
}

// mapLookup resolves labels from an in-memory table keyed by type then id.
type mapLookup map[string]map[int64]string

func (m mapLookup) LookupLabel(_ context.Context, d Descriptor, id int64) (string, bool, error) {
	label, ok := m[d.Type][id]
	return label, ok, nil
}

// memoryWriter records every persisted log and assigns sequential ids.
type memoryWriter struct {
	mu      sync.Mutex
	records []*models.ActivityLog
	err     error
}

func (w *memoryWriter) CreateActivityLog(_ context.Context, record *models.ActivityLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	record.ID = int64(len(w.records) + 1)
	record.CreatedAt = fixedNow
	record.UpdatedAt = fixedNow
	w.records = append(w.records, record)
	return nil
}

func (w *memoryWriter) all() []*models.ActivityLog {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*models.ActivityLog(nil), w.records...)
}

var errStoreDown = errors.New("activity_logs unavailable")

func newTestInterceptor(t *testing.T, w RecordWriter, lookup LabelLookup) *Interceptor {
	t.Helper()
	return NewInterceptor(w, testRegistry(t), lookup, DefaultVocabulary(), Options{
		TypeNamespace: "models",
		Server:        "test-host",
		Database:      "tecnm",
		Now:           func() time.Time { return fixedNow },
	})
}

func sampleAlumno() models.Alumno {
	return models.Alumno{
		ID:              5,
		Matricula:       "21490001",
		Nombre:          "Ana",
		ApellidoPaterno: "López",
		CURP:            ptr("LOAA000101MCHPNNA1"),
		Semestre:        3,
		CarreraID:       2,
		Estatus:         models.AlumnoActivo,
		CreatedAt:       fixedNow.Add(-time.Hour),
		UpdatedAt:       fixedNow.Add(-time.Hour),
	}
}
