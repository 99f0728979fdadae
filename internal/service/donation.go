package service

import (
	"context"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/utils"

	"github.com/google/uuid"
)

type donationService struct {
	donationRepo repository.DonationRepository
	donorRepo    repository.DonorRepository
	notifier     *ChangeNotifier
	cooldownDays int
	now          func() time.Time
}

func NewDonationService(
	donationRepo repository.DonationRepository,
	donorRepo repository.DonorRepository,
	notifier *ChangeNotifier,
	cooldownDays int,
) DonationService {
	return &donationService{
		donationRepo: donationRepo,
		donorRepo:    donorRepo,
		notifier:     notifier,
		cooldownDays: cooldownDays,
		now:          time.Now,
	}
}

func (s *donationService) LogDonation(ctx context.Context, actor domain.Actor, donorID int32, in domain.DonationInput) (*domain.Donation, bool, error) {
	logger.EnterMethod("donationService.LogDonation", "adminID", actor.UserID, "donorID", donorID)

	if !actor.IsAdmin() {
		err := domain.NewPermissionError("log donations")
		logger.ExitMethodWithError("donationService.LogDonation", err)
		return nil, false, err
	}
	in.RecipientName = utils.SanitizeText(in.RecipientName)
	if err := domain.ValidateDonationInput(&in); err != nil {
		logger.ExitMethodWithError("donationService.LogDonation", err)
		return nil, false, err
	}

	now := s.now().UTC()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
		if date.After(now) {
			err := domain.NewValidationError("date", "must not be in the future")
			logger.ExitMethodWithError("donationService.LogDonation", err)
			return nil, false, err
		}
	}

	donor, err := s.donorRepo.GetByID(ctx, donorID)
	if err != nil {
		logger.ExitMethodWithError("donationService.LogDonation", err)
		return nil, false, err
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	d := &domain.Donation{
		DonorID:        donor.ID,
		RecipientName:  in.RecipientName,
		BloodType:      in.BloodType,
		City:           in.City,
		Date:           date,
		Status:         domain.DonationStatusCompleted,
		IdempotencyKey: &key,
	}
	if d.BloodType == "" {
		d.BloodType = donor.BloodType
	}
	if d.City == "" {
		d.City = donor.City
	}

	// A backdated entry never moves the donor's cooldown backwards.
	latest := date
	if donor.LastDonationDate != nil && donor.LastDonationDate.After(latest) {
		latest = donor.LastDonationDate.UTC()
	}
	created, err := s.donationRepo.Log(ctx, d, utils.NextEligibleDate(latest, s.cooldownDays))
	if err != nil {
		logger.ExitMethodWithError("donationService.LogDonation", err)
		return nil, false, err
	}
	if created {
		s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeDonation, ID: d.ID, Op: "create"})
	} else {
		logger.Info("Donation already logged for idempotency key", "donationID", d.ID, "donorID", donorID)
	}

	logger.ExitMethod("donationService.LogDonation", "donationID", d.ID, "created", created)
	return d, created, nil
}

func (s *donationService) ResetDonations(ctx context.Context, actor domain.Actor, donorID int32) (int64, error) {
	logger.EnterMethod("donationService.ResetDonations", "adminID", actor.UserID, "donorID", donorID)

	if !actor.IsAdmin() {
		err := domain.NewPermissionError("reset donations")
		logger.ExitMethodWithError("donationService.ResetDonations", err)
		return 0, err
	}
	n, err := s.donationRepo.Reset(ctx, donorID)
	if err != nil {
		logger.ExitMethodWithError("donationService.ResetDonations", err)
		return 0, err
	}

	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeDonation, ID: donorID, Op: "reset"})
	logger.ExitMethod("donationService.ResetDonations", "deleted", n)
	return n, nil
}

func (s *donationService) ListDonations(ctx context.Context, donorID int32) ([]domain.Donation, error) {
	if _, err := s.donorRepo.GetByID(ctx, donorID); err != nil {
		return nil, err
	}
	return s.donationRepo.ListByDonor(ctx, donorID)
}
