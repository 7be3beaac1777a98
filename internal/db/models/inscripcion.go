package models

import "time"

// Inscripcion enrolls an Alumno in a Grupo
type Inscripcion struct {
	ID                int64     `db:"id" json:"id"`
	AlumnoID          int64     `db:"alumno_id" json:"alumno_id" binding:"required"`
	GrupoID           int64     `db:"grupo_id" json:"grupo_id" binding:"required"`
	Estatus           string    `db:"estatus" json:"estatus" binding:"required,oneof=cursando aprobada reprobada baja"`
	CalificacionFinal *float64  `db:"calificacion_final" json:"calificacion_final"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

func (Inscripcion) AuditType() string { return "Inscripcion" }
func (i Inscripcion) AuditID() int64  { return i.ID }
func (Inscripcion) TableName() string { return "inscripciones" }
func (Inscripcion) LabelExpr() string { return "'Inscripción #' || id" }

func (i *Inscripcion) SetID(id int64) { i.ID = id }

func (i Inscripcion) AuditFields() map[string]any {
	return map[string]any{
		"id":                 i.ID,
		"alumno_id":          i.AlumnoID,
		"grupo_id":           i.GrupoID,
		"estatus":            i.Estatus,
		"calificacion_final": deref(i.CalificacionFinal),
		"created_at":         i.CreatedAt,
		"updated_at":         i.UpdatedAt,
	}
}
