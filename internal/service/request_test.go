package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"blooddrive-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	requests *MockRequestRepo
	donors   *MockDonorRepo
	users    *MockUserRepo
	notes    *MockNotificationService
	email    *MockEmailService
	svc      *requestService
	now      time.Time
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		requests: new(MockRequestRepo),
		donors:   new(MockDonorRepo),
		users:    new(MockUserRepo),
		notes:    new(MockNotificationService),
		email:    new(MockEmailService),
		now:      time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
	}
	f.svc = NewRequestService(f.requests, f.donors, f.users, f.notes, f.email, NewChangeNotifier(), 90).(*requestService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func validRequestInput() domain.RequestInput {
	return domain.RequestInput{
		RequesterName: "Ben Okafor",
		BloodType:     "ab-",
		City:          "Springfield",
		Address:       "General Hospital, Ward 4",
		ContactPhone:  "555-010-0199",
		Reason:        "<b>surgery</b> tomorrow",
	}
}

func pendingRequest(donorID *int32) *domain.BloodRequest {
	return &domain.BloodRequest{
		ID:            21,
		RequesterID:   int32Ptr(11),
		RequesterName: "Ben Okafor",
		DonorID:       donorID,
		BloodType:     domain.BloodTypeABNeg,
		City:          "Springfield",
		ContactPhone:  "555-010-0199",
		Urgency:       domain.UrgencyCritical,
		Status:        domain.RequestStatusPending,
	}
}

func ownedDonor() *domain.Donor {
	return &domain.Donor{ID: 7, UserID: int32Ptr(5), Name: "Asha Rao", Email: "asha@example.com", BloodType: domain.BloodTypeABNeg}
}

func TestRequestService_CreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Anonymous", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("Create", ctx, mock.MatchedBy(func(r *domain.BloodRequest) bool {
			return r.RequesterID == nil && r.Status == domain.RequestStatusPending &&
				r.Urgency == domain.UrgencyNormal && r.BloodType == domain.BloodTypeABNeg &&
				r.Reason == "surgery tomorrow"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.BloodRequest).ID = 21
		}).Return(nil).Once()

		req, err := f.svc.CreateRequest(ctx, nil, validRequestInput())
		require.NoError(t, err)
		assert.Equal(t, int32(21), req.ID)
		f.requests.AssertExpectations(t)
		f.notes.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TargetedDonorIsNotified", func(t *testing.T) {
		f := newRequestFixture()
		in := validRequestInput()
		in.DonorID = int32Ptr(7)
		in.Urgency = domain.UrgencyNeededToday
		actor := &domain.Actor{UserID: 11, Role: domain.UserRoleMember}

		f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()
		f.requests.On("Create", ctx, mock.MatchedBy(func(r *domain.BloodRequest) bool {
			return r.RequesterID != nil && *r.RequesterID == 11 && *r.DonorID == 7
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.BloodRequest).ID = 21
		}).Return(nil).Once()
		f.notes.On("Notify", ctx, int32(5), "New blood request", mock.Anything, map[string]string{
			"type":       domain.NotificationRequestReceived,
			"request_id": "21",
		}).Once()
		f.email.On("SendRequestReceived", ctx, "asha@example.com", "Asha Rao", mock.Anything).Return(errors.New("smtp down")).Once()

		_, err := f.svc.CreateRequest(ctx, actor, in)
		require.NoError(t, err, "email failures are not fatal")
		f.notes.AssertExpectations(t)
		f.email.AssertExpectations(t)
	})

	t.Run("UnknownDonor", func(t *testing.T) {
		f := newRequestFixture()
		in := validRequestInput()
		in.DonorID = int32Ptr(99)
		f.donors.On("GetByID", ctx, int32(99)).Return(nil, domain.NewNotFoundError("donor", 99)).Once()

		_, err := f.svc.CreateRequest(ctx, nil, in)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "donor_id", verr.Field)
		f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("BadUrgency", func(t *testing.T) {
		f := newRequestFixture()
		in := validRequestInput()
		in.Urgency = "someday"
		_, err := f.svc.CreateRequest(ctx, nil, in)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestRequestService_ApproveRequest(t *testing.T) {
	ctx := context.Background()
	donorActor := domain.Actor{UserID: 5, Role: domain.UserRoleMember}

	t.Run("Success", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(int32Ptr(7)), nil).Once()
		f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()
		wantNext := f.now.Add(90 * 24 * time.Hour)
		f.requests.On("Approve", ctx, mock.MatchedBy(func(a *domain.Approval) bool {
			return a.RequestID == 21 && a.DonorID == 7 &&
				a.DonatedAt.Equal(f.now) && a.NextEligibleDate.Equal(wantNext) &&
				a.Donation.RecipientName == "Ben Okafor" &&
				*a.Donation.RequestID == 21 &&
				a.Donation.Status == domain.DonationStatusCompleted
		})).Return(nil).Once()
		f.notes.On("Notify", ctx, int32(11), "Blood request approved", mock.Anything, mock.MatchedBy(func(attrs map[string]string) bool {
			return attrs["type"] == domain.NotificationRequestApproved
		})).Once()
		f.users.On("GetByID", ctx, int32(11)).Return(&domain.User{ID: 11, Name: "Ben Okafor", Email: "ben@example.com"}, nil).Once()
		f.email.On("SendRequestDecision", ctx, "ben@example.com", "Ben Okafor", mock.MatchedBy(func(r *domain.BloodRequest) bool {
			return r.Status == domain.RequestStatusApproved
		})).Return(nil).Once()

		req, next, err := f.svc.ApproveRequest(ctx, donorActor, 21)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusApproved, req.Status)
		assert.Equal(t, wantNext, next)
		f.requests.AssertExpectations(t)
		f.notes.AssertExpectations(t)
		f.email.AssertExpectations(t)
	})

	t.Run("NotTargetDonor", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(int32Ptr(7)), nil).Once()
		f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()

		_, _, err := f.svc.ApproveRequest(ctx, domain.Actor{UserID: 6}, 21)
		assert.True(t, domain.IsPermission(err))
		f.requests.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
	})

	t.Run("AdminIsNotTheDonor", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(int32Ptr(7)), nil).Once()
		f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()

		_, _, err := f.svc.ApproveRequest(ctx, admin, 21)
		assert.True(t, domain.IsPermission(err))
	})

	t.Run("AlreadyRejected", func(t *testing.T) {
		f := newRequestFixture()
		req := pendingRequest(int32Ptr(7))
		req.Status = domain.RequestStatusRejected
		f.requests.On("GetByID", ctx, int32(21)).Return(req, nil).Once()
		f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()

		_, _, err := f.svc.ApproveRequest(ctx, donorActor, 21)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Unassigned", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(nil), nil).Once()

		_, _, err := f.svc.ApproveRequest(ctx, donorActor, 21)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("StoreConflictSurfaces", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(int32Ptr(7)), nil).Once()
		f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()
		f.requests.On("Approve", ctx, mock.Anything).Return(domain.NewConflictError("blood request 21 is approved, expected pending")).Once()

		_, _, err := f.svc.ApproveRequest(ctx, donorActor, 21)
		assert.True(t, domain.IsConflict(err))
		f.notes.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRequestService_RejectRequest(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.svc.emailSvc = nil

	req := pendingRequest(int32Ptr(7))
	req.RequesterID = nil
	f.requests.On("GetByID", ctx, int32(21)).Return(req, nil).Once()
	f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()
	f.requests.On("UpdateStatus", ctx, int32(21), domain.RequestStatusPending, domain.RequestStatusRejected).Return(nil).Once()

	out, err := f.svc.RejectRequest(ctx, domain.Actor{UserID: 5}, 21)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, out.Status)
	assert.Equal(t, f.now, out.UpdatedAt)
	f.requests.AssertExpectations(t)
}

func TestRequestService_AssignDonor(t *testing.T) {
	ctx := context.Background()
	requester := domain.Actor{UserID: 11, Role: domain.UserRoleMember}

	t.Run("RequesterAssigns", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(nil), nil).Once()
		f.donors.On("GetByID", ctx, int32(7)).Return(ownedDonor(), nil).Once()
		f.requests.On("AssignDonor", ctx, int32(21), int32(7)).Return(nil).Once()
		f.notes.On("Notify", ctx, int32(5), "New blood request", mock.Anything, mock.Anything).Once()
		f.email.On("SendRequestReceived", ctx, "asha@example.com", "Asha Rao", mock.Anything).Return(nil).Once()

		req, err := f.svc.AssignDonor(ctx, requester, 21, 7)
		require.NoError(t, err)
		require.NotNil(t, req.DonorID)
		assert.Equal(t, int32(7), *req.DonorID)
		f.requests.AssertExpectations(t)
		f.notes.AssertExpectations(t)
	})

	t.Run("Stranger", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(nil), nil).Once()

		_, err := f.svc.AssignDonor(ctx, domain.Actor{UserID: 99}, 21, 7)
		assert.True(t, domain.IsPermission(err))
	})

	t.Run("AlreadyAssigned", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(int32Ptr(3)), nil).Once()

		_, err := f.svc.AssignDonor(ctx, admin, 21, 7)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("UnknownDonor", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(nil), nil).Once()
		f.donors.On("GetByID", ctx, int32(70)).Return(nil, domain.NewNotFoundError("donor", 70)).Once()

		_, err := f.svc.AssignDonor(ctx, requester, 21, 70)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestRequestService_CompleteRequest(t *testing.T) {
	ctx := context.Background()
	requester := domain.Actor{UserID: 11, Role: domain.UserRoleMember}

	t.Run("Approved", func(t *testing.T) {
		f := newRequestFixture()
		req := pendingRequest(int32Ptr(7))
		req.Status = domain.RequestStatusApproved
		f.requests.On("GetByID", ctx, int32(21)).Return(req, nil).Once()
		f.requests.On("UpdateStatus", ctx, int32(21), domain.RequestStatusApproved, domain.RequestStatusCompleted).Return(nil).Once()

		out, err := f.svc.CompleteRequest(ctx, requester, 21)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCompleted, out.Status)
	})

	t.Run("StillPending", func(t *testing.T) {
		f := newRequestFixture()
		f.requests.On("GetByID", ctx, int32(21)).Return(pendingRequest(int32Ptr(7)), nil).Once()

		_, err := f.svc.CompleteRequest(ctx, requester, 21)
		assert.True(t, domain.IsConflict(err))
		f.requests.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DonorCannotComplete", func(t *testing.T) {
		f := newRequestFixture()
		req := pendingRequest(int32Ptr(7))
		req.Status = domain.RequestStatusApproved
		f.requests.On("GetByID", ctx, int32(21)).Return(req, nil).Once()

		_, err := f.svc.CompleteRequest(ctx, domain.Actor{UserID: 5}, 21)
		assert.True(t, domain.IsPermission(err))
	})
}

func TestRequestService_ListIncoming(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()

	_, err := f.svc.ListIncoming(ctx, domain.Actor{UserID: 5}, "lost")
	assert.True(t, domain.IsValidation(err))

	f.donors.On("GetByUserID", ctx, int32(8)).Return(nil, domain.NewNotFoundError("donor", 8)).Once()
	out, err := f.svc.ListIncoming(ctx, domain.Actor{UserID: 8}, "")
	require.NoError(t, err)
	assert.Empty(t, out)

	f.donors.On("GetByUserID", ctx, int32(5)).Return(ownedDonor(), nil).Once()
	f.requests.On("ListByDonor", ctx, int32(7), domain.RequestStatusPending).Return([]domain.BloodRequest{*pendingRequest(int32Ptr(7))}, nil).Once()
	out, err = f.svc.ListIncoming(ctx, domain.Actor{UserID: 5}, domain.RequestStatusPending)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
