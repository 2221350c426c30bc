package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCredentialRepository creates a GormCredentialRepository with a mocked SQL connection
func newMockCredentialRepository(t *testing.T) (*GormCredentialRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCredentialRepository(gormDB), mock, mockDB
}

func credentialRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"uid", "email", "display_name", "password_hash", "created_at", "updated_at"})
}

func TestGormCredentialRepository_Create(t *testing.T) {
	t.Run("inserts a new credential", func(t *testing.T) {
		repo, mock, mockDB := newMockCredentialRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "admin_credentials" WHERE email = \$1`).
			WithArgs("a@shop.test").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO "admin_credentials"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		cred := &auth.Credential{UID: "uid-1", Email: "a@shop.test", DisplayName: "A", PasswordHash: "hash"}
		err := repo.Create(context.Background(), cred)

		require.NoError(t, err)
		assert.False(t, cred.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		repo, mock, mockDB := newMockCredentialRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "admin_credentials" WHERE email = \$1`).
			WithArgs("a@shop.test").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.Create(context.Background(), &auth.Credential{UID: "uid-2", Email: "a@shop.test"})

		assert.ErrorIs(t, err, auth.ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCredentialRepository_FindByEmail(t *testing.T) {
	t.Run("finds an existing credential", func(t *testing.T) {
		repo, mock, mockDB := newMockCredentialRepository(t)
		defer mockDB.Close()

		now := time.Now()
		mock.ExpectQuery(`SELECT \* FROM "admin_credentials" WHERE email = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("a@shop.test", 1).
			WillReturnRows(credentialRows().AddRow("uid-1", "a@shop.test", "A", "hash", now, now))

		cred, err := repo.FindByEmail(context.Background(), "a@shop.test")

		require.NoError(t, err)
		assert.Equal(t, "uid-1", cred.UID)
		assert.Equal(t, "hash", cred.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a missing row to ErrIdentityNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockCredentialRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "admin_credentials" WHERE uid = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("missing", 1).
			WillReturnRows(credentialRows())

		_, err := repo.FindByUID(context.Background(), "missing")

		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCredentialRepository_UpdatePasswordHash(t *testing.T) {
	repo, mock, mockDB := newMockCredentialRepository(t)
	defer mockDB.Close()

	mock.ExpectExec(`UPDATE "admin_credentials" SET .*"password_hash"=\$1.* WHERE uid = \$3`).
		WithArgs("new-hash", sqlmock.AnyArg(), "uid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "admin_credentials"`).
		WithArgs("new-hash", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePasswordHash(context.Background(), "uid-1", "new-hash"))
	assert.ErrorIs(t, repo.UpdatePasswordHash(context.Background(), "missing", "new-hash"), auth.ErrIdentityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCredentialRepository_Delete(t *testing.T) {
	repo, mock, mockDB := newMockCredentialRepository(t)
	defer mockDB.Close()

	mock.ExpectExec(`DELETE FROM "admin_credentials" WHERE uid = \$1`).
		WithArgs("uid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "admin_credentials" WHERE uid = \$1`).
		WithArgs("uid-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "uid-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "uid-1"), auth.ErrIdentityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Ping(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	mock.ExpectPing()
	db := &Database{DB: gormDB}
	assert.NoError(t, db.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}
