package repository

import (
	"errors"
	"testing"
	"time"
	"webauthn_ms/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFindByCredentialID_SQLMock(t *testing.T) {
	conn, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "credential_id", "public_key", "sign_count"}).
		AddRow(3, 1, []byte("cred-id"), []byte("public-key"), 5)

	mock.ExpectQuery(`SELECT \* FROM "webauthn_credentials" WHERE credential_id = \$1`).
		WithArgs([]byte("cred-id"), 1).
		WillReturnRows(rows)

	repo := NewCredentialRepository()
	credential, err := repo.FindByCredentialID(conn, []byte("cred-id"))

	assert.NoError(t, err)
	assert.NotNil(t, credential)
	assert.Equal(t, uint(1), credential.UserID)
	assert.Equal(t, uint32(5), credential.SignCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCredentialID_NotFound_SQLMock(t *testing.T) {
	conn, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "webauthn_credentials" WHERE credential_id = \$1`).
		WithArgs([]byte("missing"), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewCredentialRepository()
	credential, err := repo.FindByCredentialID(conn, []byte("missing"))

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, credential)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DuplicateCredentialID_SQLMock(t *testing.T) {
	conn, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webauthn_credentials"`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "webauthn_credentials_credential_id_key"`))
	mock.ExpectRollback()

	repo := NewCredentialRepository()
	err := repo.Insert(conn, &domain.WebAuthnCredential{
		UserID:       1,
		CredentialID: []byte("cred-id"),
		PublicKey:    []byte("public-key"),
		RpID:         "localhost",
		DisplayName:  "Key added 01.09.2026 10:00",
	})

	assert.ErrorIs(t, err, ErrDuplicateCredentialID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSignCount_SQLMock(t *testing.T) {
	conn, mock := setupMockDB(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "webauthn_credentials" SET .* WHERE credential_id = \$3`).
		WithArgs(now, 6, []byte("cred-id")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewCredentialRepository()
	err := repo.UpdateSignCount(conn, []byte("cred-id"), 6, &now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwned_SQLMock(t *testing.T) {
	conn, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "webauthn_credentials" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewCredentialRepository()
	err := repo.DeleteOwned(conn, 1, 3)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwned_NoRows_SQLMock(t *testing.T) {
	conn, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "webauthn_credentials" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(3, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := NewCredentialRepository()
	err := repo.DeleteOwned(conn, 2, 3)

	// A foreign credential and a missing one look the same to the caller.
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersWithKeys_SQLMock(t *testing.T) {
	conn, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name", "keys_count"}).
		AddRow("petrov", "Petr", "Petrov", 2).
		AddRow("sidorov", "", "", 1)

	mock.ExpectQuery(`SELECT users\.username, users\.first_name, users\.last_name, count\(webauthn_credentials\.id\) as keys_count FROM "webauthn_credentials" JOIN users`).
		WillReturnRows(rows)

	repo := NewCredentialRepository()
	result, err := repo.UsersWithKeys(conn)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "petrov", result[0].Username)
	assert.Equal(t, int64(2), result[0].KeysCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
