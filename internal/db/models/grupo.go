package models

import "time"

// Grupo is one section of a Materia taught in a Periodo
type Grupo struct {
	ID         int64     `db:"id" json:"id"`
	Clave      string    `db:"clave" json:"clave" binding:"required"`
	MateriaID  int64     `db:"materia_id" json:"materia_id" binding:"required"`
	ProfesorID *int64    `db:"profesor_id" json:"profesor_id"`
	PeriodoID  int64     `db:"periodo_id" json:"periodo_id" binding:"required"`
	Aula       *string   `db:"aula" json:"aula"`
	Cupo       int       `db:"cupo" json:"cupo" binding:"min=0"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (Grupo) AuditType() string { return "Grupo" }
func (g Grupo) AuditID() int64  { return g.ID }
func (Grupo) TableName() string { return "grupos" }
func (Grupo) LabelExpr() string { return "clave" }

func (g *Grupo) SetID(id int64) { g.ID = id }

func (g Grupo) AuditFields() map[string]any {
	return map[string]any{
		"id":          g.ID,
		"clave":       g.Clave,
		"materia_id":  g.MateriaID,
		"profesor_id": deref(g.ProfesorID),
		"periodo_id":  g.PeriodoID,
		"aula":        deref(g.Aula),
		"cupo":        g.Cupo,
		"created_at":  g.CreatedAt,
		"updated_at":  g.UpdatedAt,
	}
}
