package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTokenRepoInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	exp := time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO tokens").
		WithArgs(uint64(2), "signed.jwt.value", "NORMAL", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewTokenRepo(db)
	if err := repo.Insert(context.Background(), 2, "signed.jwt.value", "NORMAL", exp); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTokenRepoFindByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "class", "expires_at", "created_at"}).
		AddRow(5, 2, "signed.jwt.value", "REFRESH", now.Add(time.Hour), now)
	mock.ExpectQuery("SELECT id,user_id,token,class,expires_at,created_at FROM tokens WHERE token=").
		WithArgs("signed.jwt.value").
		WillReturnRows(rows)

	repo := NewTokenRepo(db)
	tok, err := repo.FindByToken(context.Background(), "signed.jwt.value")
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if tok.ID != 5 || tok.UserID != 2 || tok.Class != "REFRESH" {
		t.Errorf("token = %+v", tok)
	}

	mock.ExpectQuery("SELECT id,user_id,token,class,expires_at,created_at FROM tokens WHERE token=").
		WithArgs("revoked.jwt.value").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.FindByToken(context.Background(), "revoked.jwt.value"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("FindByToken(revoked) = %v, want sql.ErrNoRows", err)
	}
}

func TestTokenRepoDeleteAllForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM tokens WHERE user_id=").
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewTokenRepo(db)
	if err := repo.DeleteAllForUser(context.Background(), 2); err != nil {
		t.Fatalf("DeleteAllForUser: %v", err)
	}

	// Deleting an already-empty set succeeds too.
	mock.ExpectExec("DELETE FROM tokens WHERE user_id=").
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.DeleteAllForUser(context.Background(), 2); err != nil {
		t.Errorf("repeat DeleteAllForUser: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
