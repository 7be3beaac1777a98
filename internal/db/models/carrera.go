package models

import "time"

// Carrera is an academic program offered by the campus
type Carrera struct {
	ID        int64     `db:"id" json:"id"`
	Clave     string    `db:"clave" json:"clave" binding:"required"`
	Nombre    string    `db:"nombre" json:"nombre" binding:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (Carrera) AuditType() string { return "Carrera" }
func (c Carrera) AuditID() int64  { return c.ID }
func (Carrera) TableName() string { return "carreras" }
func (Carrera) LabelExpr() string { return "nombre" }

func (c *Carrera) SetID(id int64) { c.ID = id }

func (c Carrera) AuditFields() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"clave":      c.Clave,
		"nombre":     c.Nombre,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}
