package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/utils"
)

type requestService struct {
	requestRepo  repository.BloodRequestRepository
	donorRepo    repository.DonorRepository
	userRepo     repository.UserRepository
	noteSvc      NotificationService
	emailSvc     EmailService
	notifier     *ChangeNotifier
	cooldownDays int
	now          func() time.Time
}

func NewRequestService(
	requestRepo repository.BloodRequestRepository,
	donorRepo repository.DonorRepository,
	userRepo repository.UserRepository,
	noteSvc NotificationService,
	emailSvc EmailService,
	notifier *ChangeNotifier,
	cooldownDays int,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		donorRepo:    donorRepo,
		userRepo:     userRepo,
		noteSvc:      noteSvc,
		emailSvc:     emailSvc,
		notifier:     notifier,
		cooldownDays: cooldownDays,
		now:          time.Now,
	}
}

func (s *requestService) CreateRequest(ctx context.Context, actor *domain.Actor, in domain.RequestInput) (*domain.BloodRequest, error) {
	logger.EnterMethod("requestService.CreateRequest", "bloodType", in.BloodType, "urgency", in.Urgency)

	in.RequesterName = utils.SanitizeText(in.RequesterName)
	in.Address = utils.SanitizeText(in.Address)
	in.Reason = utils.SanitizeText(in.Reason)
	if err := domain.ValidateRequestInput(&in); err != nil {
		logger.ExitMethodWithError("requestService.CreateRequest", err)
		return nil, err
	}

	var donor *domain.Donor
	if in.DonorID != nil {
		d, err := s.donorRepo.GetByID(ctx, *in.DonorID)
		if err != nil {
			if domain.IsNotFound(err) {
				err = domain.NewValidationError("donor_id", "donor %d does not exist", *in.DonorID)
			}
			logger.ExitMethodWithError("requestService.CreateRequest", err)
			return nil, err
		}
		donor = d
	}

	req := &domain.BloodRequest{
		RequesterName: in.RequesterName,
		DonorID:       in.DonorID,
		BloodType:     in.BloodType,
		City:          in.City,
		Address:       in.Address,
		ContactPhone:  in.ContactPhone,
		Reason:        in.Reason,
		Urgency:       in.Urgency,
		Status:        domain.RequestStatusPending,
	}
	if actor != nil {
		uid := actor.UserID
		req.RequesterID = &uid
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		logger.ExitMethodWithError("requestService.CreateRequest", err)
		return nil, err
	}

	if donor != nil {
		s.notifyDonor(ctx, donor, req)
	}
	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeRequest, ID: req.ID, Op: "create"})
	logger.ExitMethod("requestService.CreateRequest", "requestID", req.ID)
	return req, nil
}

// authorizeDonor loads the request and checks the actor owns its targeted donor.
func (s *requestService) authorizeDonor(ctx context.Context, actor domain.Actor, requestID int32, action string) (*domain.BloodRequest, *domain.Donor, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.DonorID == nil {
		return nil, nil, domain.NewConflictError("blood request %d has no assigned donor", requestID)
	}
	donor, err := s.donorRepo.GetByID(ctx, *req.DonorID)
	if err != nil {
		return nil, nil, err
	}
	if !donor.OwnedBy(actor.UserID) {
		return nil, nil, domain.NewPermissionError(action + " this request")
	}
	return req, donor, nil
}

func (s *requestService) ApproveRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, time.Time, error) {
	logger.EnterMethod("requestService.ApproveRequest", "userID", actor.UserID, "requestID", requestID)

	req, donor, err := s.authorizeDonor(ctx, actor, requestID, "approve")
	if err != nil {
		logger.ExitMethodWithError("requestService.ApproveRequest", err)
		return nil, time.Time{}, err
	}
	if !domain.CanTransition(req.Status, domain.RequestStatusApproved) {
		err := domain.NewConflictError("blood request %d is %s and cannot be approved", requestID, req.Status)
		logger.ExitMethodWithError("requestService.ApproveRequest", err)
		return nil, time.Time{}, err
	}

	now := s.now().UTC()
	next := utils.NextEligibleDate(now, s.cooldownDays)
	reqID := req.ID
	approval := &domain.Approval{
		RequestID: req.ID,
		DonorID:   donor.ID,
		Donation: &domain.Donation{
			DonorID:       donor.ID,
			RequestID:     &reqID,
			RecipientName: req.RequesterName,
			BloodType:     req.BloodType,
			City:          req.City,
			Date:          now,
			Status:        domain.DonationStatusCompleted,
		},
		DonatedAt:        now,
		NextEligibleDate: next,
	}
	if err := s.requestRepo.Approve(ctx, approval); err != nil {
		logger.ExitMethodWithError("requestService.ApproveRequest", err)
		return nil, time.Time{}, err
	}

	req.Status = domain.RequestStatusApproved
	req.UpdatedAt = now
	s.notifyRequester(ctx, req, domain.NotificationRequestApproved, "Blood request approved",
		fmt.Sprintf("%s approved your request for %s blood", donor.Name, req.BloodType))
	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeRequest, ID: req.ID, Op: "approve"})
	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeDonation, ID: approval.Donation.ID, Op: "create"})

	logger.Info("Blood request approved", "requestID", req.ID, "donorID", donor.ID, "nextEligible", next)
	logger.ExitMethod("requestService.ApproveRequest", "requestID", req.ID)
	return req, next, nil
}

func (s *requestService) RejectRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, error) {
	logger.EnterMethod("requestService.RejectRequest", "userID", actor.UserID, "requestID", requestID)

	req, donor, err := s.authorizeDonor(ctx, actor, requestID, "reject")
	if err != nil {
		logger.ExitMethodWithError("requestService.RejectRequest", err)
		return nil, err
	}
	if err := s.transition(ctx, req, domain.RequestStatusRejected); err != nil {
		logger.ExitMethodWithError("requestService.RejectRequest", err)
		return nil, err
	}

	s.notifyRequester(ctx, req, domain.NotificationRequestRejected, "Blood request declined",
		fmt.Sprintf("%s declined your request for %s blood", donor.Name, req.BloodType))
	logger.ExitMethod("requestService.RejectRequest", "requestID", req.ID)
	return req, nil
}

func (s *requestService) AssignDonor(ctx context.Context, actor domain.Actor, requestID, donorID int32) (*domain.BloodRequest, error) {
	logger.EnterMethod("requestService.AssignDonor", "userID", actor.UserID, "requestID", requestID, "donorID", donorID)

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		logger.ExitMethodWithError("requestService.AssignDonor", err)
		return nil, err
	}
	if !actor.IsAdmin() && !req.RequestedBy(actor.UserID) {
		err := domain.NewPermissionError("assign a donor to this request")
		logger.ExitMethodWithError("requestService.AssignDonor", err)
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		err := domain.NewConflictError("blood request %d is %s and cannot be assigned", requestID, req.Status)
		logger.ExitMethodWithError("requestService.AssignDonor", err)
		return nil, err
	}
	if req.DonorID != nil {
		err := domain.NewConflictError("blood request %d is already assigned to donor %d", requestID, *req.DonorID)
		logger.ExitMethodWithError("requestService.AssignDonor", err)
		return nil, err
	}

	donor, err := s.donorRepo.GetByID(ctx, donorID)
	if err != nil {
		logger.ExitMethodWithError("requestService.AssignDonor", err)
		return nil, err
	}
	if err := s.requestRepo.AssignDonor(ctx, requestID, donorID); err != nil {
		logger.ExitMethodWithError("requestService.AssignDonor", err)
		return nil, err
	}

	req.DonorID = &donor.ID
	req.UpdatedAt = s.now().UTC()
	s.notifyDonor(ctx, donor, req)
	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeRequest, ID: req.ID, Op: "assign"})
	logger.ExitMethod("requestService.AssignDonor", "requestID", req.ID)
	return req, nil
}

func (s *requestService) CompleteRequest(ctx context.Context, actor domain.Actor, requestID int32) (*domain.BloodRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !req.RequestedBy(actor.UserID) {
		return nil, domain.NewPermissionError("complete this request")
	}
	if err := s.transition(ctx, req, domain.RequestStatusCompleted); err != nil {
		return nil, err
	}
	logger.Info("Blood request completed", "requestID", req.ID, "userID", actor.UserID)
	return req, nil
}

// transition applies a non-approval status change after checking the graph.
func (s *requestService) transition(ctx context.Context, req *domain.BloodRequest, to domain.RequestStatus) error {
	if !domain.CanTransition(req.Status, to) {
		return domain.NewConflictError("blood request %d cannot move from %s to %s", req.ID, req.Status, to)
	}
	if err := s.requestRepo.UpdateStatus(ctx, req.ID, req.Status, to); err != nil {
		return err
	}
	req.Status = to
	req.UpdatedAt = s.now().UTC()
	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeRequest, ID: req.ID, Op: string(to)})
	return nil
}

func (s *requestService) ListIncoming(ctx context.Context, actor domain.Actor, status domain.RequestStatus) ([]domain.BloodRequest, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown request status %q", status)
	}
	donor, err := s.donorRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return []domain.BloodRequest{}, nil
		}
		return nil, err
	}
	return s.requestRepo.ListByDonor(ctx, donor.ID, status)
}

func (s *requestService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.BloodRequest, error) {
	return s.requestRepo.ListByRequester(ctx, actor.UserID)
}

func (s *requestService) notifyDonor(ctx context.Context, donor *domain.Donor, req *domain.BloodRequest) {
	if donor.UserID != nil {
		s.noteSvc.Notify(ctx, *donor.UserID, "New blood request",
			fmt.Sprintf("%s needs %s blood in %s (%s)", req.RequesterName, req.BloodType, req.City, req.Urgency),
			map[string]string{
				"type":       domain.NotificationRequestReceived,
				"request_id": strconv.Itoa(int(req.ID)),
			})
	}
	if s.emailSvc != nil && donor.Email != "" {
		if err := s.emailSvc.SendRequestReceived(ctx, donor.Email, donor.Name, req); err != nil {
			logger.Warn("Failed to email donor about request", "requestID", req.ID, "donorID", donor.ID, "error", err)
		}
	}
}

func (s *requestService) notifyRequester(ctx context.Context, req *domain.BloodRequest, kind, title, message string) {
	if req.RequesterID == nil {
		return
	}
	s.noteSvc.Notify(ctx, *req.RequesterID, title, message, map[string]string{
		"type":       kind,
		"request_id": strconv.Itoa(int(req.ID)),
	})
	if s.emailSvc == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, *req.RequesterID)
	if err != nil {
		logger.Warn("Failed to load requester for email", "requestID", req.ID, "error", err)
		return
	}
	if err := s.emailSvc.SendRequestDecision(ctx, user.Email, user.Name, req); err != nil {
		logger.Warn("Failed to email requester about decision", "requestID", req.ID, "error", err)
	}
}
