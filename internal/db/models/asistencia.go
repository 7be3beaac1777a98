package models

import "time"

// Asistencia records attendance for one class day of an Inscripcion
type Asistencia struct {
	ID            int64     `db:"id" json:"id"`
	InscripcionID int64     `db:"inscripcion_id" json:"inscripcion_id" binding:"required"`
	Fecha         time.Time `db:"fecha" json:"fecha" binding:"required"`
	Estatus       string    `db:"estatus" json:"estatus" binding:"required,oneof=presente ausente retardo justificada"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (Asistencia) AuditType() string { return "Asistencia" }
func (a Asistencia) AuditID() int64  { return a.ID }
func (Asistencia) TableName() string { return "asistencias" }
func (Asistencia) LabelExpr() string { return "'Asistencia #' || id" }

func (a *Asistencia) SetID(id int64) { a.ID = id }

func (a Asistencia) AuditFields() map[string]any {
	return map[string]any{
		"id":             a.ID,
		"inscripcion_id": a.InscripcionID,
		"fecha":          a.Fecha,
		"estatus":        a.Estatus,
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
}
