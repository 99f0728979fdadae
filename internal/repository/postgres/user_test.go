package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at", "updated_at"}).
			AddRow(1, "admin@example.com", "hash", "Admin", "admin", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(email\\) = LOWER\\(\\$1\\)").
			WithArgs("Admin@Example.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(ctx, "Admin@Example.com")
		assert.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.Nil(t, user)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Defaults to member", func(t *testing.T) {
		u := &domain.User{Email: "new@example.com", PasswordHash: "hash", Name: "New User"}

		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.Email, u.PasswordHash, u.Name, "member", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		err := repo.Create(ctx, u)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), u.ID)
		assert.Equal(t, domain.UserRoleMember, u.Role)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &domain.User{Email: "new@example.com"})
		assert.True(t, domain.IsConflict(err))
	})
}
