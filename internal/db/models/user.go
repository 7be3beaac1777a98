// Package models - user.go defines the User model for staff accounts that sign in
// to the backend. Password holds a bcrypt hash, never the plain text.
package models

import "time"

// User represents a staff account (admin, coordinador, docente)
type User struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name" binding:"required"`
	Email         string    `db:"email" json:"email" binding:"required,email"`
	Password      string    `db:"password" json:"password,omitempty"`
	Role          string    `db:"role" json:"role" binding:"required,oneof=admin coordinador docente"`
	RememberToken *string   `db:"remember_token" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (User) AuditType() string { return "User" }
func (u User) AuditID() int64  { return u.ID }
func (User) TableName() string { return "users" }
func (User) LabelExpr() string { return "name" }

func (u *User) SetID(id int64) { u.ID = id }

// AuditExcluded keeps the session token out of the audit trail entirely.
func (User) AuditExcluded() []string { return []string{"remember_token"} }

func (u User) AuditFields() map[string]any {
	return map[string]any{
		"id":             u.ID,
		"name":           u.Name,
		"email":          u.Email,
		"password":       u.Password,
		"role":           u.Role,
		"remember_token": deref(u.RememberToken),
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
	}
}
