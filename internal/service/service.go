package service

import (
	"context"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/utils"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, string, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error) // user, access, refresh
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
	CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
}

// DonorListQuery is the admin donor table query: filter, then sort.
type DonorListQuery struct {
	Filter    utils.DonorFilter
	SortField utils.SortField
	SortDir   utils.SortDirection
}

type DonorService interface {
	RegisterDonor(ctx context.Context, actor domain.Actor, donor *domain.Donor) (*domain.Donor, error)
	BulkCreateDonors(ctx context.Context, actor domain.Actor, donors []*domain.Donor) error
	GetDonor(ctx context.Context, id int32) (*domain.Donor, error)
	UpdateDonor(ctx context.Context, actor domain.Actor, donor *domain.Donor) (*domain.Donor, error)
	DeleteDonor(ctx context.Context, actor domain.Actor, id int32) error
	ListDonors(ctx context.Context, q DonorListQuery) ([]domain.DonorWithCount, error)
	ListEligibleDonors(ctx context.Context, bloodType domain.BloodType, city string) ([]domain.Donor, error)
	NearbyDonors(ctx context.Context, lat, lng, radiusKm float64, bloodType domain.BloodType) ([]domain.NearbyDonor, error)
	Eligibility(ctx context.Context, id int32) (*utils.EligibilityStatus, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, actor *domain.Actor, input domain.RequestInput) (*domain.BloodRequest, error)
	ApproveRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, time.Time, error) // request, next eligible date
	RejectRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, error)
	AssignDonor(ctx context.Context, actor domain.Actor, requestID, donorID int32) (*domain.BloodRequest, error)
	CompleteRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, error)
	ListIncoming(ctx context.Context, actor domain.Actor, status domain.RequestStatus) ([]domain.BloodRequest, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]domain.BloodRequest, error)
}

type DonationService interface {
	LogDonation(ctx context.Context, actor domain.Actor, donorID int32, input domain.DonationInput) (*domain.Donation, bool, error) // donation, created
	ResetDonations(ctx context.Context, actor domain.Actor, donorID int32) (int64, error)
	ListDonations(ctx context.Context, donorID int32) ([]domain.Donation, error)
}

type ReportService interface {
	Dashboard(ctx context.Context) (*utils.Dashboard, error)
	RefreshDashboard(ctx context.Context) (*utils.Dashboard, error)
	ExportDonors(ctx context.Context, actor domain.Actor) (string, error) // download URL
	// PurgeExpiredExports deletes exported workbooks whose link has expired.
	PurgeExpiredExports(ctx context.Context) (int, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	Notify(ctx context.Context, userID int32, title, message string, attrs map[string]string)
}

type EmailService interface {
	SendRequestReceived(ctx context.Context, email, donorName string, req *domain.BloodRequest) error
	SendRequestDecision(ctx context.Context, email, requesterName string, req *domain.BloodRequest) error
	SendEligibilityReminder(ctx context.Context, email, donorName string, eligibleSince time.Time) error
}

// Geocoder resolves a free-text address to coordinates. ok is false when
// nothing matched.
type Geocoder interface {
	Geocode(ctx context.Context, address, city string) (lat, lng float64, ok bool, err error)
}

// DashboardCache holds the last computed dashboard. Set refuses a dashboard
// whose generation predates the last Invalidate.
type DashboardCache interface {
	Get(ctx context.Context) (*utils.Dashboard, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, dash *utils.Dashboard, gen int64) error
	Invalidate(ctx context.Context) error
}
