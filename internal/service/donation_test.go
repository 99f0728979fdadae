package service

import (
	"context"
	"testing"
	"time"

	"blooddrive-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDonationService_LogDonation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)
	donor := &domain.Donor{ID: 7, BloodType: domain.BloodTypeBPos, City: "Springfield"}

	newSvc := func() (*donationService, *MockDonationRepo, *MockDonorRepo) {
		donations := new(MockDonationRepo)
		donors := new(MockDonorRepo)
		svc := NewDonationService(donations, donors, NewChangeNotifier(), 90).(*donationService)
		svc.now = func() time.Time { return now }
		return svc, donations, donors
	}

	t.Run("AdminOnly", func(t *testing.T) {
		svc, _, _ := newSvc()
		_, _, err := svc.LogDonation(ctx, member, 7, domain.DonationInput{RecipientName: "Ward 4"})
		assert.True(t, domain.IsPermission(err))
	})

	t.Run("DefaultsFromDonor", func(t *testing.T) {
		svc, donations, donors := newSvc()
		donors.On("GetByID", ctx, int32(7)).Return(donor, nil).Once()
		donations.On("Log", ctx, mock.MatchedBy(func(d *domain.Donation) bool {
			return d.DonorID == 7 && d.BloodType == domain.BloodTypeBPos &&
				d.City == "Springfield" && d.Date.Equal(now) &&
				d.IdempotencyKey != nil && len(*d.IdempotencyKey) == 36
		}), now.Add(90*24*time.Hour)).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Donation).ID = 40
		}).Return(true, nil).Once()

		d, created, err := svc.LogDonation(ctx, admin, 7, domain.DonationInput{RecipientName: " Ward 4 "})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int32(40), d.ID)
		assert.Equal(t, "Ward 4", d.RecipientName)
		donations.AssertExpectations(t)
	})

	t.Run("RepeatedKey", func(t *testing.T) {
		svc, donations, donors := newSvc()
		date := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
		donors.On("GetByID", ctx, int32(7)).Return(donor, nil).Once()
		donations.On("Log", ctx, mock.MatchedBy(func(d *domain.Donation) bool {
			return *d.IdempotencyKey == "key-1" && d.BloodType == domain.BloodTypeONeg
		}), date.Add(90*24*time.Hour)).Return(false, nil).Once()

		_, created, err := svc.LogDonation(ctx, admin, 7, domain.DonationInput{
			RecipientName:  "Ward 4",
			BloodType:      "o-",
			Date:           &date,
			IdempotencyKey: "key-1",
		})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("BackdatedKeepsCooldown", func(t *testing.T) {
		svc, donations, donors := newSvc()
		last := now.AddDate(0, 0, -10)
		old := now.AddDate(0, 0, -200)
		recent := &domain.Donor{ID: 7, BloodType: domain.BloodTypeBPos, City: "Springfield", LastDonationDate: &last}
		donors.On("GetByID", ctx, int32(7)).Return(recent, nil).Once()
		donations.On("Log", ctx, mock.MatchedBy(func(d *domain.Donation) bool {
			return d.Date.Equal(old)
		}), last.Add(90*24*time.Hour)).Return(true, nil).Once()

		d, created, err := svc.LogDonation(ctx, admin, 7, domain.DonationInput{RecipientName: "Ward 4", Date: &old})
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, d.Date.Equal(old), "the donation keeps its own date")
		donations.AssertExpectations(t)
	})

	t.Run("FutureDate", func(t *testing.T) {
		svc, _, donors := newSvc()
		future := now.Add(48 * time.Hour)
		_, _, err := svc.LogDonation(ctx, admin, 7, domain.DonationInput{RecipientName: "Ward 4", Date: &future})
		assert.True(t, domain.IsValidation(err))
		donors.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("MissingRecipient", func(t *testing.T) {
		svc, _, _ := newSvc()
		_, _, err := svc.LogDonation(ctx, admin, 7, domain.DonationInput{})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("UnknownDonor", func(t *testing.T) {
		svc, _, donors := newSvc()
		donors.On("GetByID", ctx, int32(8)).Return(nil, domain.NewNotFoundError("donor", 8)).Once()
		_, _, err := svc.LogDonation(ctx, admin, 8, domain.DonationInput{RecipientName: "Ward 4"})
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestDonationService_ResetDonations(t *testing.T) {
	ctx := context.Background()
	donations := new(MockDonationRepo)
	notifier := NewChangeNotifier()
	var events []domain.ChangeEvent
	notifier.Subscribe(ChangeListenerFunc(func(ctx context.Context, ev domain.ChangeEvent) {
		events = append(events, ev)
	}))
	svc := NewDonationService(donations, nil, notifier, 90)

	_, err := svc.ResetDonations(ctx, member, 7)
	assert.True(t, domain.IsPermission(err))

	donations.On("Reset", ctx, int32(7)).Return(int64(3), nil).Once()
	n, err := svc.ResetDonations(ctx, admin, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.Len(t, events, 1)
	assert.Equal(t, "reset", events[0].Op)
}

func TestDonationService_ListDonations(t *testing.T) {
	ctx := context.Background()
	donations := new(MockDonationRepo)
	donors := new(MockDonorRepo)
	svc := NewDonationService(donations, donors, nil, 90)

	donors.On("GetByID", ctx, int32(9)).Return(nil, domain.NewNotFoundError("donor", 9)).Once()
	_, err := svc.ListDonations(ctx, 9)
	assert.True(t, domain.IsNotFound(err))

	donors.On("GetByID", ctx, int32(7)).Return(&domain.Donor{ID: 7}, nil).Once()
	donations.On("ListByDonor", ctx, int32(7)).Return([]domain.Donation{{ID: 1}, {ID: 2}}, nil).Once()
	out, err := svc.ListDonations(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
