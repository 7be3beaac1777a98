package models

import "time"

// Periodo is an academic term, e.g. "Ene-Jun 2026"
type Periodo struct {
	ID          int64     `db:"id" json:"id"`
	Nombre      string    `db:"nombre" json:"nombre" binding:"required"`
	FechaInicio time.Time `db:"fecha_inicio" json:"fecha_inicio" binding:"required"`
	FechaFin    time.Time `db:"fecha_fin" json:"fecha_fin" binding:"required"`
	Activo      bool      `db:"activo" json:"activo"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (Periodo) AuditType() string { return "Periodo" }
func (p Periodo) AuditID() int64  { return p.ID }
func (Periodo) TableName() string { return "periodos" }
func (Periodo) LabelExpr() string { return "nombre" }

func (p *Periodo) SetID(id int64) { p.ID = id }

func (p Periodo) AuditFields() map[string]any {
	return map[string]any{
		"id":           p.ID,
		"nombre":       p.Nombre,
		"fecha_inicio": p.FechaInicio,
		"fecha_fin":    p.FechaFin,
		"activo":       p.Activo,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
}
