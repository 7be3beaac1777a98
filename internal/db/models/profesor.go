package models

import "time"

// Profesor represents an instructor who can be assigned to groups
type Profesor struct {
	ID              int64     `db:"id" json:"id"`
	NumeroEmpleado  string    `db:"numero_empleado" json:"numero_empleado" binding:"required"`
	Nombre          string    `db:"nombre" json:"nombre" binding:"required"`
	ApellidoPaterno string    `db:"apellido_paterno" json:"apellido_paterno" binding:"required"`
	Email           *string   `db:"email" json:"email"`
	RFC             *string   `db:"rfc" json:"rfc"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (Profesor) AuditType() string { return "Profesor" }
func (p Profesor) AuditID() int64  { return p.ID }
func (Profesor) TableName() string { return "profesores" }
func (Profesor) LabelExpr() string { return "nombre" }

func (p *Profesor) SetID(id int64) { p.ID = id }

func (p Profesor) AuditFields() map[string]any {
	return map[string]any{
		"id":               p.ID,
		"numero_empleado":  p.NumeroEmpleado,
		"nombre":           p.Nombre,
		"apellido_paterno": p.ApellidoPaterno,
		"email":            deref(p.Email),
		"rfc":              deref(p.RFC),
		"created_at":       p.CreatedAt,
		"updated_at":       p.UpdatedAt,
	}
}
