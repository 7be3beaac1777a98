package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/telemetry"
)

func TestInterceptor_HandleCreated(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{"Carrera": {2: "Sistemas"}})
	actor := Actor{UserID: ptr(int64(7)), RequestID: "req-1"}

	written := testutil.ToFloat64(telemetry.AuditRecordsWrittenTotal.WithLabelValues("alumnos", "CREATED"))
	i.HandleCreated(context.Background(), actor, sampleAlumno())

	records := w.all()
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, ptr(int64(7)), rec.UserID)
	assert.Equal(t, "models.Alumno", rec.LoggableType)
	assert.Equal(t, int64(5), rec.LoggableID)
	assert.Equal(t, models.ActionCreated, rec.Action)
	assert.Equal(t, "alumnos", rec.Entity)
	assert.Equal(t, "Alumno created: ID 5", rec.Description)
	assert.Equal(t, fixedNow, rec.Datetime)

	assert.Equal(t, "CREATED", rec.JSONLog.Action)
	assert.Equal(t, "alumnos", rec.JSONLog.Entity)
	assert.Equal(t, rec.Description, rec.JSONLog.Description)
	assert.Equal(t, fixedNow, rec.JSONLog.Timestamp)
	assert.Equal(t, models.LogMetadata{Server: "test-host", Database: "tecnm"}, rec.JSONLog.Metadata)
	assert.Nil(t, rec.JSONLog.Data.Old)
	assert.Equal(t, "Sistemas", rec.JSONLog.Data.New["carrera_id"])
	assert.Equal(t, "***MASKED***", rec.JSONLog.Data.New["curp"])
	assert.NotContains(t, rec.JSONLog.Data.New, "id")

	assert.Equal(t, written+1, testutil.ToFloat64(telemetry.AuditRecordsWrittenTotal.WithLabelValues("alumnos", "CREATED")))
}

func TestInterceptor_HandleUpdated(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{"Carrera": {2: "Sistemas", 3: "Industrial"}})

	before := sampleAlumno()
	after := before
	after.CarreraID = 3
	after.UpdatedAt = fixedNow

	i.HandleUpdated(context.Background(), SystemActor, before, after)

	records := w.all()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Nil(t, rec.UserID, "system events have no user")
	assert.Equal(t, models.ActionUpdated, rec.Action)
	assert.Equal(t, "Alumno updated: ID 5", rec.Description)
	assert.Equal(t, models.ChangeData{
		Old: models.FieldMap{"carrera_id": "Sistemas"},
		New: models.FieldMap{"carrera_id": "Industrial"},
	}, rec.JSONLog.Data)
}

func TestInterceptor_NoNetChangeWritesNothing(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{})

	before := sampleAlumno()
	after := before
	after.UpdatedAt = fixedNow.Add(time.Minute)

	i.HandleUpdated(context.Background(), SystemActor, before, before)
	i.HandleUpdated(context.Background(), SystemActor, before, after)

	assert.Empty(t, w.all())
}

func TestInterceptor_HandleDeleted(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{"Alumno": {5: "Ana López"}})

	pago := models.Pago{ID: 11, AlumnoID: 5, Concepto: "Inscripción", Monto: 2500, CardNumber: ptr("4111111111111234"), CVV: ptr("123")}
	i.HandleDeleted(context.Background(), Actor{UserID: ptr(int64(1))}, pago)

	records := w.all()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, models.ActionDeleted, rec.Action)
	assert.Equal(t, "pagos", rec.Entity)
	assert.Equal(t, "Pago deleted: ID 11", rec.Description)
	assert.Nil(t, rec.JSONLog.Data.New)
	assert.Equal(t, models.FieldMap{
		"alumno_id":   "Ana López",
		"concepto":    "Inscripción",
		"monto":       2500.0,
		"card_number": "************1234",
		"cvv":         "***",
		"fecha_pago":  nil,
	}, rec.JSONLog.Data.Old)
}

func TestInterceptor_UsesEventTime(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{})
	occurred := fixedNow.Add(-5 * time.Minute)

	i.Handle(context.Background(), Event{Action: models.ActionCreated, After: models.Carrera{ID: 1, Clave: "ISC", Nombre: "Sistemas"}, OccurredAt: occurred})

	records := w.all()
	require.Len(t, records, 1)
	assert.Equal(t, occurred, records[0].Datetime)
	assert.Equal(t, occurred, records[0].JSONLog.Timestamp)
}

func TestInterceptor_WriteFailureIsAbsorbed(t *testing.T) {
	w := &memoryWriter{err: errStoreDown}
	i := newTestInterceptor(t, w, mapLookup{})

	before := testutil.ToFloat64(telemetry.AuditWriteFailuresTotal.WithLabelValues("carreras"))
	assert.NotPanics(t, func() {
		i.HandleCreated(context.Background(), SystemActor, models.Carrera{ID: 1, Nombre: "Sistemas"})
	})
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.AuditWriteFailuresTotal.WithLabelValues("carreras")))
}

func TestInterceptor_PanicIsAbsorbed(t *testing.T) {
	panicking := RecordWriterFunc(func(context.Context, *models.ActivityLog) error { panic("driver bug") })
	i := newTestInterceptor(t, panicking, mapLookup{})

	before := testutil.ToFloat64(telemetry.AuditWriteFailuresTotal.WithLabelValues("carreras"))
	assert.NotPanics(t, func() {
		i.HandleDeleted(context.Background(), SystemActor, models.Carrera{ID: 1, Nombre: "Sistemas"})
	})
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.AuditWriteFailuresTotal.WithLabelValues("carreras")))
}

func TestInterceptor_CancelledContextStillWrites(t *testing.T) {
	var gotErr error
	w := RecordWriterFunc(func(ctx context.Context, _ *models.ActivityLog) error {
		gotErr = ctx.Err()
		return nil
	})
	i := newTestInterceptor(t, w, mapLookup{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	i.HandleCreated(ctx, SystemActor, models.Carrera{ID: 1, Nombre: "Sistemas"})

	assert.NoError(t, gotErr)
}

func TestInterceptor_IgnoresIncompleteEvents(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{})

	i.Handle(context.Background(), Event{Action: models.ActionCreated})
	i.Handle(context.Background(), Event{Action: models.ActionUpdated, After: models.Carrera{ID: 1}})
	i.Handle(context.Background(), Event{Action: "ARCHIVED", After: models.Carrera{ID: 1}})

	assert.Empty(t, w.all())
}

func TestInterceptor_SetVocabulary(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{})
	carrera := models.Carrera{ID: 1, Clave: "ISC", Nombre: "Sistemas"}

	i.HandleCreated(context.Background(), SystemActor, carrera)

	v := DefaultVocabulary()
	v.Sensitive = append(v.Sensitive, "clave")
	i.SetVocabulary(v)
	i.HandleCreated(context.Background(), SystemActor, carrera)

	records := w.all()
	require.Len(t, records, 2)
	assert.Equal(t, "ISC", records[0].JSONLog.Data.New["clave"])
	assert.Equal(t, "***MASKED***", records[1].JSONLog.Data.New["clave"])
}

// recordingShipper collects shipped records.
type recordingShipper struct {
	mu      sync.Mutex
	shipped []*models.ActivityLog
	err     error
	closed  bool
}

func (s *recordingShipper) Ship(_ context.Context, r *models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipped = append(s.shipped, r)
	return s.err
}

func (s *recordingShipper) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestInterceptor_ShipsPersistedRecords(t *testing.T) {
	w := &memoryWriter{}
	s := &recordingShipper{err: errors.New("webhook down")}
	i := newTestInterceptor(t, w, mapLookup{}).WithShipper(s)

	i.HandleCreated(context.Background(), SystemActor, models.Carrera{ID: 1, Nombre: "Sistemas"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, i.Close(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.shipped, 1)
	assert.Equal(t, int64(1), s.shipped[0].ID, "ships the record after the store assigned its id")
	assert.True(t, s.closed)
	assert.Len(t, w.all(), 1, "a shipper failure leaves the persisted record alone")
}

func TestInterceptor_DoesNotShipFailedWrites(t *testing.T) {
	s := &recordingShipper{}
	i := newTestInterceptor(t, &memoryWriter{err: errStoreDown}, mapLookup{}).WithShipper(s)

	i.HandleCreated(context.Background(), SystemActor, models.Carrera{ID: 1, Nombre: "Sistemas"})
	require.NoError(t, i.Close(context.Background()))

	assert.Empty(t, s.shipped)
}

func TestInterceptor_HandleUpdated_OnlyChangedFieldIsRecorded(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{})

	before := sampleAlumno()
	after := before
	after.Semestre = 4

	i.HandleUpdated(context.Background(), SystemActor, before, after)

	records := w.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.ChangeData{
		Old: models.FieldMap{"semestre": 3},
		New: models.FieldMap{"semestre": 4},
	}, records[0].JSONLog.Data, "nombre is unchanged and must not appear")
}

func TestInterceptor_TypedNilEntityIsAbsorbed(t *testing.T) {
	w := &memoryWriter{}
	i := newTestInterceptor(t, w, mapLookup{})

	before := testutil.ToFloat64(telemetry.AuditWriteFailuresTotal.WithLabelValues(""))
	assert.NotPanics(t, func() {
		i.HandleCreated(context.Background(), SystemActor, (*models.Alumno)(nil))
	})
	assert.Empty(t, w.all())
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.AuditWriteFailuresTotal.WithLabelValues("")))
}

// blockingShipper holds every Ship call until release is closed.
type blockingShipper struct {
	recordingShipper
	started chan struct{}
	release chan struct{}
}

func (s *blockingShipper) Ship(ctx context.Context, r *models.ActivityLog) error {
	close(s.started)
	<-s.release
	return s.recordingShipper.Ship(ctx, r)
}

func TestInterceptor_CloseLeavesShipperOpenWhileShipping(t *testing.T) {
	s := &blockingShipper{started: make(chan struct{}), release: make(chan struct{})}
	i := newTestInterceptor(t, &memoryWriter{}, mapLookup{}).WithShipper(s)

	i.HandleCreated(context.Background(), SystemActor, models.Carrera{ID: 1, Nombre: "Sistemas"})
	<-s.started

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, i.Close(expired), context.Canceled)
	s.mu.Lock()
	assert.False(t, s.closed, "shipper closed under a running shipment")
	s.mu.Unlock()

	close(s.release)
	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, i.Close(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.True(t, s.closed)
	assert.Len(t, s.shipped, 1)
}
