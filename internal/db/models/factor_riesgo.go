package models

import "time"

// FactorRiesgo is a catalogued dropout risk factor (academic, economic, psychosocial, ...)
type FactorRiesgo struct {
	ID          int64     `db:"id" json:"id"`
	Nombre      string    `db:"nombre" json:"nombre" binding:"required"`
	Categoria   string    `db:"categoria" json:"categoria" binding:"required"`
	Descripcion *string   `db:"descripcion" json:"descripcion"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (FactorRiesgo) AuditType() string { return "FactorRiesgo" }
func (f FactorRiesgo) AuditID() int64  { return f.ID }
func (FactorRiesgo) TableName() string { return "factores_riesgo" }
func (FactorRiesgo) LabelExpr() string { return "nombre" }

func (f *FactorRiesgo) SetID(id int64) { f.ID = id }

func (f FactorRiesgo) AuditFields() map[string]any {
	return map[string]any{
		"id":          f.ID,
		"nombre":      f.Nombre,
		"categoria":   f.Categoria,
		"descripcion": deref(f.Descripcion),
		"created_at":  f.CreatedAt,
		"updated_at":  f.UpdatedAt,
	}
}

// AlumnoFactorRiesgo links a detected risk factor to a student
type AlumnoFactorRiesgo struct {
	ID             int64     `db:"id" json:"id"`
	AlumnoID       int64     `db:"alumno_id" json:"alumno_id" binding:"required"`
	FactorRiesgoID int64     `db:"factor_riesgo_id" json:"factor_riesgo_id" binding:"required"`
	Severidad      string    `db:"severidad" json:"severidad" binding:"required,oneof=baja media alta"`
	Observaciones  *string   `db:"observaciones" json:"observaciones"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (AlumnoFactorRiesgo) AuditType() string { return "AlumnoFactorRiesgo" }
func (a AlumnoFactorRiesgo) AuditID() int64  { return a.ID }
func (AlumnoFactorRiesgo) TableName() string { return "alumno_factores_riesgo" }
func (AlumnoFactorRiesgo) LabelExpr() string { return "'Factor #' || id" }

func (a *AlumnoFactorRiesgo) SetID(id int64) { a.ID = id }

func (a AlumnoFactorRiesgo) AuditFields() map[string]any {
	return map[string]any{
		"id":               a.ID,
		"alumno_id":        a.AlumnoID,
		"factor_riesgo_id": a.FactorRiesgoID,
		"severidad":        a.Severidad,
		"observaciones":    deref(a.Observaciones),
		"created_at":       a.CreatedAt,
		"updated_at":       a.UpdatedAt,
	}
}
