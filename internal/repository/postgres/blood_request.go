package postgres

import (
	"context"
	"database/sql"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
)

const requestColumns = `id, requester_id, requester_name, donor_id, blood_type, city, COALESCE(address, ''), contact_phone,
	COALESCE(reason, ''), urgency, status, created_at, updated_at`

type bloodRequestRepository struct {
	db *sql.DB
}

func NewBloodRequestRepository(db *sql.DB) repository.BloodRequestRepository {
	return &bloodRequestRepository{db: db}
}

func scanRequest(row scanner) (*domain.BloodRequest, error) {
	r := &domain.BloodRequest{}
	var requesterID, donorID sql.NullInt32
	err := row.Scan(&r.ID, &requesterID, &r.RequesterName, &donorID, &r.BloodType, &r.City, &r.Address, &r.ContactPhone,
		&r.Reason, &r.Urgency, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.RequesterID = int32Ptr(requesterID)
	r.DonorID = int32Ptr(donorID)
	return r, nil
}

func (r *bloodRequestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	query := `INSERT INTO blood_requests (requester_id, requester_name, donor_id, blood_type, city, address, contact_phone,
	          reason, urgency, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}
	logger.DatabaseCall("INSERT", "blood_requests", "bloodType", req.BloodType, "urgency", req.Urgency)
	err := r.db.QueryRowContext(ctx, query, nullInt32(req.RequesterID), req.RequesterName, nullInt32(req.DonorID), req.BloodType,
		req.City, nullString(req.Address), req.ContactPhone, nullString(req.Reason), req.Urgency, req.Status,
		req.CreatedAt, req.UpdatedAt).Scan(&req.ID)
	logger.DatabaseResult("INSERT", 1, err, "requestID", req.ID)
	return translate("insert blood request", "donor", derefID(req.DonorID), err)
}

func (r *bloodRequestRepository) GetByID(ctx context.Context, id int32) (*domain.BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests WHERE id = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate("get blood request", "blood request", id, err)
	}
	return req, nil
}

// UpdateStatus is a compare-and-set on the status column.
func (r *bloodRequestRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.RequestStatus) error {
	query := `UPDATE blood_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return translate("update blood request status", "blood request", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NewStoreError("update blood request status", err)
	}
	if rows == 0 {
		return r.explainMiss(ctx, id, from)
	}
	return nil
}

func (r *bloodRequestRepository) AssignDonor(ctx context.Context, id, donorID int32) error {
	query := `UPDATE blood_requests SET donor_id = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, donorID, time.Now().UTC(), id, domain.RequestStatusPending)
	if err != nil {
		return translate("assign donor", "donor", donorID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NewStoreError("assign donor", err)
	}
	if rows == 0 {
		return r.explainMiss(ctx, id, domain.RequestStatusPending)
	}
	return nil
}

// explainMiss turns a zero-row conditional update into NotFound or Conflict.
func (r *bloodRequestRepository) explainMiss(ctx context.Context, id int32, expected domain.RequestStatus) error {
	var current domain.RequestStatus
	err := r.db.QueryRowContext(ctx, `SELECT status FROM blood_requests WHERE id = $1`, id).Scan(&current)
	if err != nil {
		return translate("get blood request status", "blood request", id, err)
	}
	return domain.NewConflictError("blood request %d is %s, expected %s", id, current, expected)
}

func (r *bloodRequestRepository) Approve(ctx context.Context, a *domain.Approval) error {
	logger.EnterMethod("bloodRequestRepository.Approve", "requestID", a.RequestID, "donorID", a.DonorID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return domain.NewStoreError("begin approve", err)
	}
	defer tx.Rollback()

	var status domain.RequestStatus
	var donorID sql.NullInt32
	err = tx.QueryRowContext(ctx, `SELECT status, donor_id FROM blood_requests WHERE id = $1 FOR UPDATE`, a.RequestID).Scan(&status, &donorID)
	if err != nil {
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return translate("lock blood request", "blood request", a.RequestID, err)
	}
	if status != domain.RequestStatusPending {
		err := domain.NewConflictError("blood request %d is %s, expected %s", a.RequestID, status, domain.RequestStatusPending)
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return err
	}
	if !donorID.Valid || donorID.Int32 != a.DonorID {
		err := domain.NewConflictError("blood request %d is not assigned to donor %d", a.RequestID, a.DonorID)
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE blood_requests SET status = $1, updated_at = $2 WHERE id = $3`,
		domain.RequestStatusApproved, time.Now().UTC(), a.RequestID); err != nil {
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return translate("approve blood request", "blood request", a.RequestID, err)
	}

	d := a.Donation
	d.CreatedAt = time.Now().UTC()
	if d.Status == "" {
		d.Status = domain.DonationStatusCompleted
	}
	insert := `INSERT INTO donations (donor_id, request_id, recipient_name, blood_type, city, donated_at, status, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := tx.QueryRowContext(ctx, insert, d.DonorID, nullInt32(d.RequestID), d.RecipientName, d.BloodType, nullString(d.City),
		d.Date, d.Status, d.CreatedAt).Scan(&d.ID); err != nil {
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return translate("insert donation", "donor", a.DonorID, err)
	}

	if err := updateDonorDates(ctx, tx, a.DonorID, a.DonatedAt, a.NextEligibleDate); err != nil {
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("bloodRequestRepository.Approve", err)
		return domain.NewStoreError("commit approve", err)
	}
	logger.ExitMethod("bloodRequestRepository.Approve", "requestID", a.RequestID, "donationID", d.ID)
	return nil
}

func (r *bloodRequestRepository) ListByDonor(ctx context.Context, donorID int32, status domain.RequestStatus) ([]domain.BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests WHERE donor_id = $1`
	args := []interface{}{donorID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"
	return r.queryRequests(ctx, "list requests by donor", query, args...)
}

func (r *bloodRequestRepository) ListByRequester(ctx context.Context, requesterID int32) ([]domain.BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests WHERE requester_id = $1 ORDER BY created_at DESC, id DESC`
	return r.queryRequests(ctx, "list requests by requester", query, requesterID)
}

func (r *bloodRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests`
	var args []interface{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"
	return r.queryRequests(ctx, "list requests by status", query, args...)
}

func (r *bloodRequestRepository) queryRequests(ctx context.Context, op, query string, args ...interface{}) ([]domain.BloodRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(op, "blood request", nil, err)
	}
	defer rows.Close()

	reqs := []domain.BloodRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	return reqs, nil
}
