package repository

import (
	"context"
	"time"

	"blooddrive-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// DonorQuery narrows List at the store. Zero values disable a predicate.
type DonorQuery struct {
	BloodType    domain.BloodType
	City         string
	EligibleOnly bool
	WithLocation bool
}

type DonorRepository interface {
	Create(ctx context.Context, donor *domain.Donor) error
	// CreateBatch inserts all donors in one transaction or none of them.
	CreateBatch(ctx context.Context, donors []*domain.Donor) error
	GetByID(ctx context.Context, id int32) (*domain.Donor, error)
	GetByUserID(ctx context.Context, userID int32) (*domain.Donor, error)
	Update(ctx context.Context, donor *domain.Donor) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, q DonorQuery) ([]domain.Donor, error)
	// ListBecameEligible returns donors whose next eligible date falls in [from, to).
	ListBecameEligible(ctx context.Context, from, to time.Time) ([]domain.Donor, error)
}

type DonationRepository interface {
	// Log inserts a donation and moves the donor's donation dates in one
	// transaction. Donor dates never move backwards. Idempotency keys are
	// scoped to the donor; a repeated key returns the existing row with
	// created=false.
	Log(ctx context.Context, donation *domain.Donation, nextEligible time.Time) (created bool, err error)
	// Reset deletes every donation of the donor and clears its last donation date.
	Reset(ctx context.Context, donorID int32) (int64, error)
	ListByDonor(ctx context.Context, donorID int32) ([]domain.Donation, error)
	ListWithDonors(ctx context.Context) ([]domain.DonationWithDonor, error)
	CountByDonor(ctx context.Context, donorIDs []int32) (map[int32]int, error)
}

type BloodRequestRepository interface {
	Create(ctx context.Context, req *domain.BloodRequest) error
	GetByID(ctx context.Context, id int32) (*domain.BloodRequest, error)
	// UpdateStatus moves a request from one status to another. It fails with
	// a ConflictError when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int32, from, to domain.RequestStatus) error
	AssignDonor(ctx context.Context, id, donorID int32) error
	// Approve performs the approval side effects as a single transaction.
	Approve(ctx context.Context, approval *domain.Approval) error
	ListByDonor(ctx context.Context, donorID int32, status domain.RequestStatus) ([]domain.BloodRequest, error)
	ListByRequester(ctx context.Context, requesterID int32) ([]domain.BloodRequest, error)
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.BloodRequest, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
