package models

import "time"

// Pago is a fee payment made by a student. CardNumber and CVV are the card
// details captured at the cashier's desk when the payment is taken by card.
type Pago struct {
	ID         int64      `db:"id" json:"id"`
	AlumnoID   int64      `db:"alumno_id" json:"alumno_id" binding:"required"`
	Concepto   string     `db:"concepto" json:"concepto" binding:"required"`
	Monto      float64    `db:"monto" json:"monto" binding:"gt=0"`
	CardNumber *string    `db:"card_number" json:"card_number,omitempty"`
	CVV        *string    `db:"cvv" json:"cvv,omitempty"`
	FechaPago  *time.Time `db:"fecha_pago" json:"fecha_pago"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

func (Pago) AuditType() string { return "Pago" }
func (p Pago) AuditID() int64  { return p.ID }
func (Pago) TableName() string { return "pagos" }
func (Pago) LabelExpr() string { return "concepto" }

func (p *Pago) SetID(id int64) { p.ID = id }

func (p Pago) AuditFields() map[string]any {
	return map[string]any{
		"id":          p.ID,
		"alumno_id":   p.AlumnoID,
		"concepto":    p.Concepto,
		"monto":       p.Monto,
		"card_number": deref(p.CardNumber),
		"cvv":         deref(p.CVV),
		"fecha_pago":  deref(p.FechaPago),
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
