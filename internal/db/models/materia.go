package models

import "time"

// Materia is a course in the catalogue. CarreraID is nil for common-core courses.
type Materia struct {
	ID        int64     `db:"id" json:"id"`
	Clave     string    `db:"clave" json:"clave" binding:"required"`
	Nombre    string    `db:"nombre" json:"nombre" binding:"required"`
	Creditos  int       `db:"creditos" json:"creditos" binding:"min=0"`
	CarreraID *int64    `db:"carrera_id" json:"carrera_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (Materia) AuditType() string { return "Materia" }
func (m Materia) AuditID() int64  { return m.ID }
func (Materia) TableName() string { return "materias" }
func (Materia) LabelExpr() string { return "nombre" }

func (m *Materia) SetID(id int64) { m.ID = id }

func (m Materia) AuditFields() map[string]any {
	return map[string]any{
		"id":         m.ID,
		"clave":      m.Clave,
		"nombre":     m.Nombre,
		"creditos":   m.Creditos,
		"carrera_id": deref(m.CarreraID),
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	}
}
