// users.go holds the User hooks plugged into the generic entity handlers:
// passwords are hashed before persistence and stripped from every response.
package admin

import (
	"context"
	"errors"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// errPasswordRequired is returned when a new user has no password.
var errPasswordRequired = errors.New("password is required")

// hashUserPassword hashes a plain password before the user is written. On
// update an empty password keeps the stored hash.
func hashUserPassword(_ context.Context, existing *models.User, incoming *models.User) error {
	if err := auth.ValidateRole(incoming.Role); err != nil {
		return err
	}
	if incoming.Password == "" {
		if existing == nil {
			return errPasswordRequired
		}
		incoming.Password = existing.Password
		return nil
	}
	if auth.IsHashed(incoming.Password) {
		return errors.New("password must be sent in plain text")
	}
	hash, err := auth.HashPassword(incoming.Password)
	if err != nil {
		return err
	}
	incoming.Password = hash
	return nil
}

// presentUser removes the password hash from a user before it is serialized.
func presentUser(u *models.User) any {
	out := *u
	out.Password = ""
	return out
}

// UserHooks returns the EntityHooks for users.
func UserHooks() EntityHooks[models.User] {
	return EntityHooks[models.User]{
		BeforeSave: hashUserPassword,
		Present:    presentUser,
	}
}
