// Package models - alumno.go defines the Alumno (student) model, the centre of
// the early-warning workflow: its estatus moves to en_riesgo when risk factors
// accumulate.
package models

import "time"

// Alumno estatus values
const (
	AlumnoActivo         = "activo"
	AlumnoEnRiesgo       = "en_riesgo"
	AlumnoBajaTemporal   = "baja_temporal"
	AlumnoBajaDefinitiva = "baja_definitiva"
	AlumnoEgresado       = "egresado"
)

// Alumno represents an enrolled student
type Alumno struct {
	ID              int64     `db:"id" json:"id"`
	Matricula       string    `db:"matricula" json:"matricula" binding:"required"`
	Nombre          string    `db:"nombre" json:"nombre" binding:"required"`
	ApellidoPaterno string    `db:"apellido_paterno" json:"apellido_paterno" binding:"required"`
	ApellidoMaterno *string   `db:"apellido_materno" json:"apellido_materno"`
	Email           *string   `db:"email" json:"email"`
	CURP            *string   `db:"curp" json:"curp"`
	Semestre        int       `db:"semestre" json:"semestre" binding:"min=1,max=14"`
	CarreraID       int64     `db:"carrera_id" json:"carrera_id" binding:"required"`
	Estatus         string    `db:"estatus" json:"estatus" binding:"required,oneof=activo en_riesgo baja_temporal baja_definitiva egresado"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (Alumno) AuditType() string { return "Alumno" }
func (a Alumno) AuditID() int64  { return a.ID }
func (Alumno) TableName() string { return "alumnos" }
func (Alumno) LabelExpr() string { return "nombre || ' ' || apellido_paterno" }

func (a *Alumno) SetID(id int64) { a.ID = id }

func (a Alumno) AuditFields() map[string]any {
	return map[string]any{
		"id":               a.ID,
		"matricula":        a.Matricula,
		"nombre":           a.Nombre,
		"apellido_paterno": a.ApellidoPaterno,
		"apellido_materno": deref(a.ApellidoMaterno),
		"email":            deref(a.Email),
		"curp":             deref(a.CURP),
		"semestre":         a.Semestre,
		"carrera_id":       a.CarreraID,
		"estatus":          a.Estatus,
		"created_at":       a.CreatedAt,
		"updated_at":       a.UpdatedAt,
	}
}
