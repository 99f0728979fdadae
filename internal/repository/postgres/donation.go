package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"

	"github.com/lib/pq"
)

const donationColumns = `id, donor_id, request_id, recipient_name, blood_type, COALESCE(city, ''), donated_at, status, idempotency_key, created_at`

type donationRepository struct {
	db *sql.DB
}

func NewDonationRepository(db *sql.DB) repository.DonationRepository {
	return &donationRepository{db: db}
}

func scanDonation(row scanner, extra ...any) (*domain.Donation, error) {
	d := &domain.Donation{}
	var requestID sql.NullInt32
	var key sql.NullString
	dest := append([]any{&d.ID, &d.DonorID, &requestID, &d.RecipientName, &d.BloodType, &d.City, &d.Date, &d.Status, &key, &d.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.RequestID = int32Ptr(requestID)
	if key.Valid {
		d.IdempotencyKey = &key.String
	}
	return d, nil
}

func idempotencyKey(d *domain.Donation) sql.NullString {
	if d.IdempotencyKey == nil {
		return sql.NullString{}
	}
	return nullString(*d.IdempotencyKey)
}

func (r *donationRepository) Log(ctx context.Context, d *domain.Donation, nextEligible time.Time) (bool, error) {
	logger.EnterMethod("donationRepository.Log", "donorID", d.DonorID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("donationRepository.Log", err)
		return false, domain.NewStoreError("begin log donation", err)
	}
	defer tx.Rollback()

	if d.Status == "" {
		d.Status = domain.DonationStatusCompleted
	}
	d.CreatedAt = time.Now().UTC()

	insert := `INSERT INTO donations (donor_id, request_id, recipient_name, blood_type, city, donated_at, status, idempotency_key, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	           ON CONFLICT (donor_id, idempotency_key) DO NOTHING RETURNING id`
	err = tx.QueryRowContext(ctx, insert, d.DonorID, nullInt32(d.RequestID), d.RecipientName, d.BloodType, nullString(d.City),
		d.Date, d.Status, idempotencyKey(d), d.CreatedAt).Scan(&d.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// The key was already used for this donor; hand back the stored row untouched.
		existing, err := scanDonation(tx.QueryRowContext(ctx,
			`SELECT `+donationColumns+` FROM donations WHERE donor_id = $1 AND idempotency_key = $2`,
			d.DonorID, idempotencyKey(d)))
		if err != nil {
			logger.ExitMethodWithError("donationRepository.Log", err)
			return false, translate("get donation by key", "donation", idempotencyKey(d).String, err)
		}
		*d = *existing
		logger.ExitMethod("donationRepository.Log", "donationID", d.ID, "created", false)
		return false, nil
	}
	if err != nil {
		logger.ExitMethodWithError("donationRepository.Log", err)
		return false, translate("insert donation", "donor", d.DonorID, err)
	}

	if err := updateDonorDates(ctx, tx, d.DonorID, d.Date, nextEligible); err != nil {
		logger.ExitMethodWithError("donationRepository.Log", err)
		return false, err
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("donationRepository.Log", err)
		return false, domain.NewStoreError("commit log donation", err)
	}
	logger.ExitMethod("donationRepository.Log", "donationID", d.ID, "created", true)
	return true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// updateDonorDates records a donation on the donor row. Dates only move
// forward: an older donation leaves both dates as they are.
func updateDonorDates(ctx context.Context, tx execer, donorID int32, donatedAt, nextEligible time.Time) error {
	query := `UPDATE donors SET
	              next_eligible_date = CASE WHEN last_donation_date IS NULL OR last_donation_date <= $1
	                                        THEN $2 ELSE next_eligible_date END,
	              last_donation_date = GREATEST(COALESCE(last_donation_date, $1), $1),
	              updated_at = $3
	          WHERE id = $4`
	result, err := tx.ExecContext(ctx, query, donatedAt, nextEligible, time.Now().UTC(), donorID)
	if err != nil {
		return translate("update donor dates", "donor", donorID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NewStoreError("update donor dates", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("donor", donorID)
	}
	return nil
}

func (r *donationRepository) Reset(ctx context.Context, donorID int32) (int64, error) {
	logger.EnterMethod("donationRepository.Reset", "donorID", donorID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("donationRepository.Reset", err)
		return 0, domain.NewStoreError("begin reset donations", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM donations WHERE donor_id = $1`, donorID)
	if err != nil {
		logger.ExitMethodWithError("donationRepository.Reset", err)
		return 0, translate("delete donations", "donor", donorID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, domain.NewStoreError("delete donations", err)
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE donors SET last_donation_date = NULL, next_eligible_date = NULL, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), donorID)
	if err != nil {
		logger.ExitMethodWithError("donationRepository.Reset", err)
		return 0, translate("clear donor dates", "donor", donorID, err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return 0, domain.NewStoreError("clear donor dates", err)
	} else if rows == 0 {
		return 0, domain.NewNotFoundError("donor", donorID)
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("donationRepository.Reset", err)
		return 0, domain.NewStoreError("commit reset donations", err)
	}
	logger.ExitMethod("donationRepository.Reset", "donorID", donorID, "deleted", deleted)
	return deleted, nil
}

func (r *donationRepository) ListByDonor(ctx context.Context, donorID int32) ([]domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE donor_id = $1 ORDER BY donated_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, donorID)
	if err != nil {
		return nil, translate("list donations", "donation", nil, err)
	}
	defer rows.Close()

	donations := []domain.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, domain.NewStoreError("scan donation", err)
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list donations", err)
	}
	return donations, nil
}

func (r *donationRepository) ListWithDonors(ctx context.Context) ([]domain.DonationWithDonor, error) {
	query := `SELECT dn.id, dn.donor_id, dn.request_id, dn.recipient_name, dn.blood_type, COALESCE(dn.city, ''), dn.donated_at,
	                 dn.status, dn.idempotency_key, dn.created_at, d.name, d.email
	          FROM donations dn
	          LEFT JOIN donors d ON d.id = dn.donor_id
	          ORDER BY dn.donated_at DESC, dn.id DESC`
	logger.DatabaseCall("SELECT", "donations LEFT JOIN donors")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, translate("list donations with donors", "donation", nil, err)
	}
	defer rows.Close()

	out := []domain.DonationWithDonor{}
	for rows.Next() {
		var name, email sql.NullString
		d, err := scanDonation(rows, &name, &email)
		if err != nil {
			logger.DatabaseResult("SELECT", int64(len(out)), err)
			return nil, domain.NewStoreError("scan donation", err)
		}
		item := domain.DonationWithDonor{Donation: *d}
		if name.Valid || email.Valid {
			item.Donor = &domain.DonorRef{Name: name.String, Email: email.String}
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list donations with donors", err)
	}
	logger.DatabaseResult("SELECT", int64(len(out)), nil)
	return out, nil
}

func (r *donationRepository) CountByDonor(ctx context.Context, donorIDs []int32) (map[int32]int, error) {
	counts := make(map[int32]int, len(donorIDs))
	if len(donorIDs) == 0 {
		return counts, nil
	}

	ids := make([]int64, len(donorIDs))
	for i, id := range donorIDs {
		ids[i] = int64(id)
	}
	query := `SELECT donor_id, COUNT(*) FROM donations WHERE donor_id = ANY($1) GROUP BY donor_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, translate("count donations", "donation", nil, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int32
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, domain.NewStoreError("scan donation count", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("count donations", err)
	}
	return counts, nil
}
