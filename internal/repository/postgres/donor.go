package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
)

const donorColumns = `id, user_id, name, COALESCE(email, ''), phone, age, weight_kg, blood_type, city, COALESCE(address, ''),
	latitude, longitude, is_eligible, last_donation_date, next_eligible_date, created_at, updated_at`

type donorRepository struct {
	db *sql.DB
}

func NewDonorRepository(db *sql.DB) repository.DonorRepository {
	return &donorRepository{db: db}
}

func scanDonor(row scanner) (*domain.Donor, error) {
	d := &domain.Donor{}
	var (
		userID             sql.NullInt32
		weight, lat, lng   sql.NullFloat64
		lastDonation, next sql.NullTime
	)
	err := row.Scan(&d.ID, &userID, &d.Name, &d.Email, &d.Phone, &d.Age, &weight, &d.BloodType, &d.City, &d.Address,
		&lat, &lng, &d.IsEligible, &lastDonation, &next, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.UserID = int32Ptr(userID)
	d.WeightKg = floatPtr(weight)
	d.Latitude = floatPtr(lat)
	d.Longitude = floatPtr(lng)
	d.LastDonationDate = timePtr(lastDonation)
	d.NextEligibleDate = timePtr(next)
	return d, nil
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertDonor(ctx context.Context, q execQuerier, d *domain.Donor) error {
	query := `INSERT INTO donors (user_id, name, email, phone, age, weight_kg, blood_type, city, address, latitude, longitude,
	          is_eligible, last_donation_date, next_eligible_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	return q.QueryRowContext(ctx, query, nullInt32(d.UserID), d.Name, nullString(d.Email), d.Phone, d.Age, nullFloat(d.WeightKg),
		d.BloodType, d.City, nullString(d.Address), nullFloat(d.Latitude), nullFloat(d.Longitude),
		d.IsEligible, d.LastDonationDate, d.NextEligibleDate, d.CreatedAt, d.UpdatedAt).Scan(&d.ID)
}

func (r *donorRepository) Create(ctx context.Context, d *domain.Donor) error {
	logger.DatabaseCall("INSERT", "donors", "name", d.Name, "bloodType", d.BloodType)
	err := insertDonor(ctx, r.db, d)
	logger.DatabaseResult("INSERT", 1, err, "donorID", d.ID)
	return translate("insert donor", "donor", d.Name, err)
}

func (r *donorRepository) CreateBatch(ctx context.Context, donors []*domain.Donor) error {
	logger.EnterMethod("donorRepository.CreateBatch", "count", len(donors))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("donorRepository.CreateBatch", err)
		return domain.NewStoreError("begin donor batch", err)
	}
	defer tx.Rollback()

	for i, d := range donors {
		if err := insertDonor(ctx, tx, d); err != nil {
			logger.ExitMethodWithError("donorRepository.CreateBatch", err, "row", i)
			return translate(fmt.Sprintf("insert donor row %d", i), "donor", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("donorRepository.CreateBatch", err)
		return domain.NewStoreError("commit donor batch", err)
	}
	logger.ExitMethod("donorRepository.CreateBatch", "count", len(donors))
	return nil
}

func (r *donorRepository) GetByID(ctx context.Context, id int32) (*domain.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1`
	d, err := scanDonor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate("get donor", "donor", id, err)
	}
	return d, nil
}

func (r *donorRepository) GetByUserID(ctx context.Context, userID int32) (*domain.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE user_id = $1`
	d, err := scanDonor(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, translate("get donor by user", "donor for user", userID, err)
	}
	return d, nil
}

func (r *donorRepository) Update(ctx context.Context, d *domain.Donor) error {
	query := `UPDATE donors SET name=$1, email=$2, phone=$3, age=$4, weight_kg=$5, blood_type=$6, city=$7, address=$8,
	          latitude=$9, longitude=$10, is_eligible=$11, updated_at=$12 WHERE id=$13`
	d.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query, d.Name, nullString(d.Email), d.Phone, d.Age, nullFloat(d.WeightKg), d.BloodType,
		d.City, nullString(d.Address), nullFloat(d.Latitude), nullFloat(d.Longitude), d.IsEligible, d.UpdatedAt, d.ID)
	if err != nil {
		return translate("update donor", "donor", d.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NewStoreError("update donor", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("donor", d.ID)
	}
	return nil
}

func (r *donorRepository) Delete(ctx context.Context, id int32) error {
	logger.DatabaseCall("DELETE", "donors", "donorID", id)
	result, err := r.db.ExecContext(ctx, `DELETE FROM donors WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "donorID", id)
		return translate("delete donor", "donor", id, err)
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("DELETE", rows, err, "donorID", id)
	if err != nil {
		return domain.NewStoreError("delete donor", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("donor", id)
	}
	return nil
}

func (r *donorRepository) List(ctx context.Context, q repository.DonorQuery) ([]domain.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE 1=1`
	var args []interface{}
	argIdx := 1

	if q.EligibleOnly {
		query += " AND is_eligible = TRUE"
	}
	if q.WithLocation {
		query += " AND latitude IS NOT NULL AND longitude IS NOT NULL"
	}
	if q.BloodType != "" {
		query += fmt.Sprintf(" AND blood_type = $%d", argIdx)
		args = append(args, q.BloodType)
		argIdx++
	}
	if q.City != "" {
		query += fmt.Sprintf(" AND city ILIKE $%d", argIdx)
		args = append(args, "%"+escapeLike(q.City)+"%")
		argIdx++
	}
	query += " ORDER BY created_at DESC, id DESC"

	return r.queryDonors(ctx, "list donors", query, args...)
}

func (r *donorRepository) ListBecameEligible(ctx context.Context, from, to time.Time) ([]domain.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors
	          WHERE last_donation_date IS NOT NULL AND next_eligible_date >= $1 AND next_eligible_date < $2
	          ORDER BY next_eligible_date`
	return r.queryDonors(ctx, "list donors became eligible", query, from, to)
}

func (r *donorRepository) queryDonors(ctx context.Context, op, query string, args ...interface{}) ([]domain.Donor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(op, "donor", nil, err)
	}
	defer rows.Close()

	donors := []domain.Donor{}
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		donors = append(donors, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	return donors, nil
}
