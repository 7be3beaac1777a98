package models

import "time"

// Calificacion is the grade obtained in one unit of an Inscripcion
type Calificacion struct {
	ID            int64     `db:"id" json:"id"`
	InscripcionID int64     `db:"inscripcion_id" json:"inscripcion_id" binding:"required"`
	Unidad        int       `db:"unidad" json:"unidad" binding:"required,min=1"`
	Valor         float64   `db:"valor" json:"valor" binding:"min=0,max=100"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (Calificacion) AuditType() string { return "Calificacion" }
func (c Calificacion) AuditID() int64  { return c.ID }
func (Calificacion) TableName() string { return "calificaciones" }
func (Calificacion) LabelExpr() string { return "'Calificación #' || id" }

func (c *Calificacion) SetID(id int64) { c.ID = id }

func (c Calificacion) AuditFields() map[string]any {
	return map[string]any{
		"id":             c.ID,
		"inscripcion_id": c.InscripcionID,
		"unidad":         c.Unidad,
		"valor":          c.Valor,
		"created_at":     c.CreatedAt,
		"updated_at":     c.UpdatedAt,
	}
}
