package http

import (
	"context"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/service"
	"blooddrive-backend/internal/utils"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}
func (m *MockAuthService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	args := m.Called(ctx, refresh)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockAuthService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockDonorService struct{ mock.Mock }

func (m *MockDonorService) RegisterDonor(ctx context.Context, actor domain.Actor, donor *domain.Donor) (*domain.Donor, error) {
	args := m.Called(ctx, actor, donor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}
func (m *MockDonorService) BulkCreateDonors(ctx context.Context, actor domain.Actor, donors []*domain.Donor) error {
	args := m.Called(ctx, actor, donors)
	return args.Error(0)
}
func (m *MockDonorService) GetDonor(ctx context.Context, id int32) (*domain.Donor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}
func (m *MockDonorService) UpdateDonor(ctx context.Context, actor domain.Actor, donor *domain.Donor) (*domain.Donor, error) {
	args := m.Called(ctx, actor, donor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}
func (m *MockDonorService) DeleteDonor(ctx context.Context, actor domain.Actor, id int32) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockDonorService) ListDonors(ctx context.Context, q service.DonorListQuery) ([]domain.DonorWithCount, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DonorWithCount), args.Error(1)
}
func (m *MockDonorService) ListEligibleDonors(ctx context.Context, bloodType domain.BloodType, city string) ([]domain.Donor, error) {
	args := m.Called(ctx, bloodType, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donor), args.Error(1)
}
func (m *MockDonorService) NearbyDonors(ctx context.Context, lat, lng, radiusKm float64, bloodType domain.BloodType) ([]domain.NearbyDonor, error) {
	args := m.Called(ctx, lat, lng, radiusKm, bloodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NearbyDonor), args.Error(1)
}
func (m *MockDonorService) Eligibility(ctx context.Context, id int32) (*utils.EligibilityStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.EligibilityStatus), args.Error(1)
}

type MockRequestService struct{ mock.Mock }

func (m *MockRequestService) CreateRequest(ctx context.Context, actor *domain.Actor, input domain.RequestInput) (*domain.BloodRequest, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}
func (m *MockRequestService) ApproveRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, time.Time, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, time.Time{}, args.Error(2)
	}
	return args.Get(0).(*domain.BloodRequest), args.Get(1).(time.Time), args.Error(2)
}
func (m *MockRequestService) RejectRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}
func (m *MockRequestService) AssignDonor(ctx context.Context, actor domain.Actor, requestID, donorID int32) (*domain.BloodRequest, error) {
	args := m.Called(ctx, actor, requestID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}
func (m *MockRequestService) CompleteRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}
func (m *MockRequestService) ListIncoming(ctx context.Context, actor domain.Actor, status domain.RequestStatus) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, actor, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}
func (m *MockRequestService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}

type MockDonationService struct{ mock.Mock }

func (m *MockDonationService) LogDonation(ctx context.Context, actor domain.Actor, donorID int32, input domain.DonationInput) (*domain.Donation, bool, error) {
	args := m.Called(ctx, actor, donorID, input)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Donation), args.Bool(1), args.Error(2)
}
func (m *MockDonationService) ResetDonations(ctx context.Context, actor domain.Actor, donorID int32) (int64, error) {
	args := m.Called(ctx, actor, donorID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockDonationService) ListDonations(ctx context.Context, donorID int32) ([]domain.Donation, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donation), args.Error(1)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) Dashboard(ctx context.Context) (*utils.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.Dashboard), args.Error(1)
}
func (m *MockReportService) RefreshDashboard(ctx context.Context) (*utils.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.Dashboard), args.Error(1)
}
func (m *MockReportService) ExportDonors(ctx context.Context, actor domain.Actor) (string, error) {
	args := m.Called(ctx, actor)
	return args.String(0), args.Error(1)
}
func (m *MockReportService) PurgeExpiredExports(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}
func (m *MockNotificationService) Notify(ctx context.Context, userID int32, title, message string, attrs map[string]string) {
	m.Called(ctx, userID, title, message, attrs)
}
