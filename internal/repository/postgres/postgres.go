package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/repository"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.DonorRepository
	repository.DonationRepository
	repository.BloodRequestRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		DonorRepository:        NewDonorRepository(db),
		DonationRepository:     NewDonationRepository(db),
		BloodRequestRepository: NewBloodRequestRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.NewStoreError("ping", err)
	}
	return nil
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translate maps driver errors onto the domain error taxonomy.
func translate(op, entity string, id any, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return domain.NewConflictError("%s already exists", entity)
		case pqForeignKeyViolation:
			return domain.NewNotFoundError("referenced record of "+entity, id)
		case pqCheckViolation:
			return domain.NewValidationError("", "%s violates constraint %s", entity, pqErr.Constraint)
		}
	}
	if domain.IsNotFound(err) || domain.IsConflict(err) || domain.IsValidation(err) || domain.IsPermission(err) || domain.IsRetryable(err) {
		return err
	}
	return domain.NewStoreError(op, err)
}

func nullInt32(p *int32) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *p, Valid: true}
}

// derefID turns an optional id into something printable; nil stays nil.
func derefID(p *int32) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func int32Ptr(n sql.NullInt32) *int32 {
	if !n.Valid {
		return nil
	}
	v := n.Int32
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

type scanner interface {
	Scan(dest ...any) error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
