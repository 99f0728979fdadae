package service

import (
	"context"
	"io"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/utils"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockDonorRepo
type MockDonorRepo struct{ mock.Mock }

func (m *MockDonorRepo) Create(ctx context.Context, donor *domain.Donor) error {
	args := m.Called(ctx, donor)
	return args.Error(0)
}
func (m *MockDonorRepo) CreateBatch(ctx context.Context, donors []*domain.Donor) error {
	args := m.Called(ctx, donors)
	return args.Error(0)
}
func (m *MockDonorRepo) GetByID(ctx context.Context, id int32) (*domain.Donor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}
func (m *MockDonorRepo) GetByUserID(ctx context.Context, userID int32) (*domain.Donor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}
func (m *MockDonorRepo) Update(ctx context.Context, donor *domain.Donor) error {
	args := m.Called(ctx, donor)
	return args.Error(0)
}
func (m *MockDonorRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockDonorRepo) List(ctx context.Context, q repository.DonorQuery) ([]domain.Donor, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donor), args.Error(1)
}
func (m *MockDonorRepo) ListBecameEligible(ctx context.Context, from, to time.Time) ([]domain.Donor, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donor), args.Error(1)
}

// MockDonationRepo
type MockDonationRepo struct{ mock.Mock }

func (m *MockDonationRepo) Log(ctx context.Context, donation *domain.Donation, nextEligible time.Time) (bool, error) {
	args := m.Called(ctx, donation, nextEligible)
	return args.Bool(0), args.Error(1)
}
func (m *MockDonationRepo) Reset(ctx context.Context, donorID int32) (int64, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockDonationRepo) ListByDonor(ctx context.Context, donorID int32) ([]domain.Donation, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donation), args.Error(1)
}
func (m *MockDonationRepo) ListWithDonors(ctx context.Context) ([]domain.DonationWithDonor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DonationWithDonor), args.Error(1)
}
func (m *MockDonationRepo) CountByDonor(ctx context.Context, donorIDs []int32) (map[int32]int, error) {
	args := m.Called(ctx, donorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int32]int), args.Error(1)
}

// MockRequestRepo
type MockRequestRepo struct{ mock.Mock }

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.BloodRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id int32) (*domain.BloodRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}
func (m *MockRequestRepo) UpdateStatus(ctx context.Context, id int32, from, to domain.RequestStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockRequestRepo) AssignDonor(ctx context.Context, id, donorID int32) error {
	args := m.Called(ctx, id, donorID)
	return args.Error(0)
}
func (m *MockRequestRepo) Approve(ctx context.Context, approval *domain.Approval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}
func (m *MockRequestRepo) ListByDonor(ctx context.Context, donorID int32, status domain.RequestStatus) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, donorID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}
func (m *MockRequestRepo) ListByRequester(ctx context.Context, requesterID int32) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}
func (m *MockRequestRepo) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct{ mock.Mock }

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockNotificationService
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

// MockEmailService
type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendRequestReceived(ctx context.Context, email, donorName string, req *domain.BloodRequest) error {
	args := m.Called(ctx, email, donorName, req)
	return args.Error(0)
}
func (m *MockEmailService) SendRequestDecision(ctx context.Context, email, requesterName string, req *domain.BloodRequest) error {
	args := m.Called(ctx, email, requesterName, req)
	return args.Error(0)
}
func (m *MockEmailService) SendEligibilityReminder(ctx context.Context, email, donorName string, eligibleSince time.Time) error {
	args := m.Called(ctx, email, donorName, eligibleSince)
	return args.Error(0)
}

// MockGeocoder
type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address, city string) (float64, float64, bool, error) {
	args := m.Called(ctx, address, city)
	return args.Get(0).(float64), args.Get(1).(float64), args.Bool(2), args.Error(3)
}

// MockDashboardCache
type MockDashboardCache struct{ mock.Mock }

func (m *MockDashboardCache) Get(ctx context.Context) (*utils.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.Dashboard), args.Error(1)
}
func (m *MockDashboardCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockDashboardCache) Set(ctx context.Context, dash *utils.Dashboard, gen int64) error {
	args := m.Called(ctx, dash, gen)
	return args.Error(0)
}
func (m *MockDashboardCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockStorage
type MockStorage struct{ mock.Mock }

func (m *MockStorage) SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error {
	args := m.Called(ctx, key, contentType, reader)
	return args.Error(0)
}
func (m *MockStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockStorage) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockStorage) ListFiles(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func int32Ptr(v int32) *int32 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
