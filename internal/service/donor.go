package service

import (
	"context"
	"fmt"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/utils"
)

type donorService struct {
	donorRepo    repository.DonorRepository
	donationRepo repository.DonationRepository
	geocoder     Geocoder
	notifier     *ChangeNotifier
	cooldownDays int
	now          func() time.Time
}

func NewDonorService(
	donorRepo repository.DonorRepository,
	donationRepo repository.DonationRepository,
	geocoder Geocoder,
	notifier *ChangeNotifier,
	cooldownDays int,
) DonorService {
	return &donorService{
		donorRepo:    donorRepo,
		donationRepo: donationRepo,
		geocoder:     geocoder,
		notifier:     notifier,
		cooldownDays: cooldownDays,
		now:          time.Now,
	}
}

// prepare normalizes, validates and cleans a donor before it reaches the store.
func (s *donorService) prepare(ctx context.Context, d *domain.Donor) error {
	d.Address = utils.SanitizeText(d.Address)
	d.Name = utils.SanitizeText(d.Name)
	domain.NormalizeDonor(d)
	if err := domain.ValidateDonor(d); err != nil {
		return err
	}
	s.locate(ctx, d)
	return nil
}

// locate fills missing coordinates from the address. Failures are logged only.
func (s *donorService) locate(ctx context.Context, d *domain.Donor) {
	if s.geocoder == nil || d.HasLocation() || (d.Address == "" && d.City == "") {
		return
	}
	lat, lng, ok, err := s.geocoder.Geocode(ctx, d.Address, d.City)
	if err != nil {
		logger.Warn("Geocoding failed, donor saved without coordinates", "city", d.City, "error", err)
		return
	}
	if !ok {
		logger.Debug("No geocoding match", "city", d.City)
		return
	}
	d.Latitude, d.Longitude = &lat, &lng
}

func (s *donorService) RegisterDonor(ctx context.Context, actor domain.Actor, d *domain.Donor) (*domain.Donor, error) {
	logger.EnterMethod("donorService.RegisterDonor", "userID", actor.UserID, "bloodType", d.BloodType)

	if !actor.IsAdmin() {
		// A member registers themselves, once.
		uid := actor.UserID
		d.UserID = &uid
		if existing, err := s.donorRepo.GetByUserID(ctx, uid); err == nil && existing != nil {
			err := domain.NewConflictError("user %d already has a donor record", uid)
			logger.ExitMethodWithError("donorService.RegisterDonor", err)
			return nil, err
		} else if err != nil && !domain.IsNotFound(err) {
			logger.ExitMethodWithError("donorService.RegisterDonor", err)
			return nil, err
		}
	}
	d.IsEligible = true
	d.LastDonationDate = nil
	d.NextEligibleDate = nil

	if err := s.prepare(ctx, d); err != nil {
		logger.ExitMethodWithError("donorService.RegisterDonor", err)
		return nil, err
	}
	if err := s.donorRepo.Create(ctx, d); err != nil {
		logger.ExitMethodWithError("donorService.RegisterDonor", err)
		return nil, err
	}

	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeDonor, ID: d.ID, Op: "create"})
	logger.ExitMethod("donorService.RegisterDonor", "donorID", d.ID)
	return d, nil
}

// RowError ties a validation failure to its position in a bulk upload.
type RowError struct {
	Row int
	Err error
}

// BulkError lists every invalid row of a rejected batch.
type BulkError struct {
	Rows []RowError
}

func (e *BulkError) Error() string {
	if len(e.Rows) == 1 {
		return fmt.Sprintf("row %d: %v", e.Rows[0].Row, e.Rows[0].Err)
	}
	return fmt.Sprintf("%d invalid rows, first at row %d: %v", len(e.Rows), e.Rows[0].Row, e.Rows[0].Err)
}

// Unwrap exposes the first row error so callers can classify the batch.
func (e *BulkError) Unwrap() error {
	return e.Rows[0].Err
}

func (s *donorService) BulkCreateDonors(ctx context.Context, actor domain.Actor, donors []*domain.Donor) error {
	logger.EnterMethod("donorService.BulkCreateDonors", "count", len(donors))

	if !actor.IsAdmin() {
		err := domain.NewPermissionError("bulk add donors")
		logger.ExitMethodWithError("donorService.BulkCreateDonors", err)
		return err
	}
	if len(donors) == 0 {
		err := domain.NewValidationError("donors", "at least one donor is required")
		logger.ExitMethodWithError("donorService.BulkCreateDonors", err)
		return err
	}

	var bulkErr BulkError
	for i, d := range donors {
		d.IsEligible = true
		d.Address = utils.SanitizeText(d.Address)
		d.Name = utils.SanitizeText(d.Name)
		domain.NormalizeDonor(d)
		if err := domain.ValidateDonor(d); err != nil {
			bulkErr.Rows = append(bulkErr.Rows, RowError{Row: i + 1, Err: err})
		}
	}
	if len(bulkErr.Rows) > 0 {
		logger.ExitMethodWithError("donorService.BulkCreateDonors", &bulkErr, "invalidRows", len(bulkErr.Rows))
		return &bulkErr
	}

	for _, d := range donors {
		s.locate(ctx, d)
	}
	if err := s.donorRepo.CreateBatch(ctx, donors); err != nil {
		logger.ExitMethodWithError("donorService.BulkCreateDonors", err)
		return err
	}

	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeDonor, Op: "bulk_create"})
	logger.ExitMethod("donorService.BulkCreateDonors", "count", len(donors))
	return nil
}

func (s *donorService) GetDonor(ctx context.Context, id int32) (*domain.Donor, error) {
	return s.donorRepo.GetByID(ctx, id)
}

func (s *donorService) UpdateDonor(ctx context.Context, actor domain.Actor, d *domain.Donor) (*domain.Donor, error) {
	logger.EnterMethod("donorService.UpdateDonor", "userID", actor.UserID, "donorID", d.ID)

	existing, err := s.donorRepo.GetByID(ctx, d.ID)
	if err != nil {
		logger.ExitMethodWithError("donorService.UpdateDonor", err)
		return nil, err
	}
	if !actor.IsAdmin() && !existing.OwnedBy(actor.UserID) {
		err := domain.NewPermissionError("update this donor")
		logger.ExitMethodWithError("donorService.UpdateDonor", err)
		return nil, err
	}

	// Ownership and donation history are not editable here.
	d.UserID = existing.UserID
	d.LastDonationDate = existing.LastDonationDate
	d.NextEligibleDate = existing.NextEligibleDate
	d.CreatedAt = existing.CreatedAt
	if !actor.IsAdmin() {
		d.IsEligible = existing.IsEligible
	}
	// A moved donor with unchanged coordinates is geocoded again.
	if (existing.Address != d.Address || existing.City != d.City) && sameCoords(existing, d) {
		d.Latitude, d.Longitude = nil, nil
	}

	if err := s.prepare(ctx, d); err != nil {
		logger.ExitMethodWithError("donorService.UpdateDonor", err)
		return nil, err
	}
	if err := s.donorRepo.Update(ctx, d); err != nil {
		logger.ExitMethodWithError("donorService.UpdateDonor", err)
		return nil, err
	}

	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeDonor, ID: d.ID, Op: "update"})
	logger.ExitMethod("donorService.UpdateDonor", "donorID", d.ID)
	return d, nil
}

func sameCoords(a, b *domain.Donor) bool {
	if !a.HasLocation() || !b.HasLocation() {
		return false
	}
	return *a.Latitude == *b.Latitude && *a.Longitude == *b.Longitude
}

func (s *donorService) DeleteDonor(ctx context.Context, actor domain.Actor, id int32) error {
	if !actor.IsAdmin() {
		return domain.NewPermissionError("delete donors")
	}
	if err := s.donorRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Donor deleted", "donorID", id, "adminID", actor.UserID)
	s.notifier.Publish(ctx, domain.ChangeEvent{Kind: domain.ChangeDonor, ID: id, Op: "delete"})
	return nil
}

func (s *donorService) ListDonors(ctx context.Context, q DonorListQuery) ([]domain.DonorWithCount, error) {
	logger.EnterMethod("donorService.ListDonors", "filter", q.Filter.String(), "sort", q.SortField, "dir", q.SortDir)

	donors, err := s.donorRepo.List(ctx, repository.DonorQuery{})
	if err != nil {
		logger.ExitMethodWithError("donorService.ListDonors", err)
		return nil, err
	}

	field, dir := q.SortField, q.SortDir
	if field == "" {
		field = utils.SortByCreatedAt
	}
	if dir == "" {
		dir = utils.SortAsc
	}
	donors = utils.SortDonors(utils.FilterDonors(donors, q.Filter), field, dir)

	ids := make([]int32, len(donors))
	for i, d := range donors {
		ids[i] = d.ID
	}
	counts, err := s.donationRepo.CountByDonor(ctx, ids)
	if err != nil {
		logger.ExitMethodWithError("donorService.ListDonors", err)
		return nil, err
	}

	out := make([]domain.DonorWithCount, len(donors))
	for i, d := range donors {
		out[i] = domain.DonorWithCount{Donor: d, DonationCount: counts[d.ID]}
	}
	logger.ExitMethod("donorService.ListDonors", "count", len(out))
	return out, nil
}

func (s *donorService) ListEligibleDonors(ctx context.Context, bloodType domain.BloodType, city string) ([]domain.Donor, error) {
	if bloodType != "" && !bloodType.Valid() {
		return nil, domain.NewValidationError("blood_type", "unknown blood type %q", bloodType)
	}
	return s.donorRepo.List(ctx, repository.DonorQuery{BloodType: bloodType, City: city, EligibleOnly: true})
}

func (s *donorService) NearbyDonors(ctx context.Context, lat, lng, radiusKm float64, bloodType domain.BloodType) ([]domain.NearbyDonor, error) {
	if lat < -90 || lat > 90 {
		return nil, domain.NewValidationError("latitude", "must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return nil, domain.NewValidationError("longitude", "must be between -180 and 180")
	}
	if radiusKm < 0 {
		return nil, domain.NewValidationError("radius_km", "must not be negative")
	}
	if bloodType != "" && !bloodType.Valid() {
		return nil, domain.NewValidationError("blood_type", "unknown blood type %q", bloodType)
	}

	donors, err := s.donorRepo.List(ctx, repository.DonorQuery{BloodType: bloodType, EligibleOnly: true, WithLocation: true})
	if err != nil {
		return nil, err
	}
	return utils.NearbyDonors(donors, lat, lng, radiusKm), nil
}

func (s *donorService) Eligibility(ctx context.Context, id int32) (*utils.EligibilityStatus, error) {
	d, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status := utils.CalculateEligibility(d.LastDonationDate, s.now(), s.cooldownDays)
	return &status, nil
}
