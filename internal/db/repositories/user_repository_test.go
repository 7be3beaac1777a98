package repositories

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var userCols = []string{"id", "name", "email", "password", "role", "remember_token", "created_at", "updated_at"}

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSqlxMock(t)
	return NewUserRepository(db), mock
}

func sampleUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(int64(1), "Coordinación ISC", "coord@tecnm.mx", "$2a$10$hash", "coordinador", nil, rowTime, rowTime)
}

func TestGetUserByEmail_NormalisesInput(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("WHERE LOWER\\(email\\) = \\$1").
		WithArgs("coord@tecnm.mx").
		WillReturnRows(sampleUserRow())

	user, err := repo.GetUserByEmail(context.Background(), "  Coord@TecNM.mx ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.Role != "coordinador" {
		t.Fatalf("user = %+v", user)
	}
	if user.RememberToken != nil {
		t.Errorf("RememberToken = %v, want nil", user.RememberToken)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetUserByEmail(context.Background(), "nobody@tecnm.mx")
	if err != nil || user != nil {
		t.Errorf("GetUserByEmail() = %+v, %v; want nil, nil", user, err)
	}
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("FROM users").WillReturnError(errDB)

	if _, err := repo.GetUserByEmail(context.Background(), "a@b.c"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGetUserByID(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sampleUserRow())

	user, err := repo.GetUserByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.Email != "coord@tecnm.mx" {
		t.Errorf("user = %+v", user)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetUserByID(context.Background(), 2)
	if err != nil || user != nil {
		t.Errorf("GetUserByID() = %+v, %v; want nil, nil", user, err)
	}
}
