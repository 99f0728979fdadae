package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blooddrive-backend/internal/cache"
	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/storage"
	"blooddrive-backend/internal/utils"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Donors"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportLinkTTL     = 15 * time.Minute
)

var exportHeader = []any{
	"ID", "Name", "Email", "Phone", "Blood Type", "City", "Age",
	"Eligible", "Last Donation", "Next Eligible", "Donations",
}

type reportService struct {
	donorRepo    repository.DonorRepository
	donationRepo repository.DonationRepository
	requestRepo  repository.BloodRequestRepository
	cache        DashboardCache
	store        storage.StorageInterface
	topN         int
	now          func() time.Time
}

// NewReportService builds the admin reporting service. cache may be nil.
func NewReportService(
	donorRepo repository.DonorRepository,
	donationRepo repository.DonationRepository,
	requestRepo repository.BloodRequestRepository,
	dashCache DashboardCache,
	store storage.StorageInterface,
) ReportService {
	return &reportService{
		donorRepo:    donorRepo,
		donationRepo: donationRepo,
		requestRepo:  requestRepo,
		cache:        dashCache,
		store:        store,
		topN:         utils.DefaultTopN,
		now:          time.Now,
	}
}

func (s *reportService) Dashboard(ctx context.Context) (*utils.Dashboard, error) {
	if s.cache != nil {
		dash, err := s.cache.Get(ctx)
		if err == nil {
			logger.Debug("Dashboard served from cache", "generatedAt", dash.GeneratedAt)
			return dash, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("Dashboard cache read failed", "error", err)
		}
	}
	return s.RefreshDashboard(ctx)
}

// RefreshDashboard recomputes the dashboard from the store and caches it.
func (s *reportService) RefreshDashboard(ctx context.Context) (*utils.Dashboard, error) {
	logger.EnterMethod("reportService.RefreshDashboard")

	// Read the generation before the store so a change committed while we
	// aggregate keeps this result out of the cache.
	cacheable := s.cache != nil
	var gen int64
	if cacheable {
		var err error
		if gen, err = s.cache.Generation(ctx); err != nil {
			logger.Warn("Dashboard cache generation unavailable", "error", err)
			cacheable = false
		}
	}

	donors, err := s.donorRepo.List(ctx, repository.DonorQuery{})
	if err != nil {
		logger.ExitMethodWithError("reportService.RefreshDashboard", err)
		return nil, err
	}
	donations, err := s.donationRepo.ListWithDonors(ctx)
	if err != nil {
		logger.ExitMethodWithError("reportService.RefreshDashboard", err)
		return nil, err
	}
	requests, err := s.requestRepo.ListByStatus(ctx, "")
	if err != nil {
		logger.ExitMethodWithError("reportService.RefreshDashboard", err)
		return nil, err
	}

	dash := utils.BuildDashboard(donors, donations, requests, s.now(), s.topN)
	if cacheable {
		err := s.cache.Set(ctx, &dash, gen)
		switch {
		case errors.Is(err, cache.ErrStale):
			logger.Debug("Dashboard changed while refreshing, not cached", "generation", gen)
		case err != nil:
			logger.Warn("Failed to cache dashboard", "error", err)
		}
	}

	logger.ExitMethod("reportService.RefreshDashboard", "donors", dash.TotalDonors, "donations", dash.Donations.Total)
	return &dash, nil
}

func (s *reportService) ExportDonors(ctx context.Context, actor domain.Actor) (string, error) {
	logger.EnterMethod("reportService.ExportDonors", "adminID", actor.UserID)

	if !actor.IsAdmin() {
		err := domain.NewPermissionError("export donors")
		logger.ExitMethodWithError("reportService.ExportDonors", err)
		return "", err
	}

	donors, err := s.donorRepo.List(ctx, repository.DonorQuery{})
	if err != nil {
		logger.ExitMethodWithError("reportService.ExportDonors", err)
		return "", err
	}
	ids := make([]int32, len(donors))
	for i, d := range donors {
		ids[i] = d.ID
	}
	counts, err := s.donationRepo.CountByDonor(ctx, ids)
	if err != nil {
		logger.ExitMethodWithError("reportService.ExportDonors", err)
		return "", err
	}

	f, err := BuildDonorWorkbook(donors, counts)
	if err != nil {
		logger.ExitMethodWithError("reportService.ExportDonors", err)
		return "", err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.ExitMethodWithError("reportService.ExportDonors", err)
		return "", fmt.Errorf("failed to render workbook: %w", err)
	}

	key := storage.ReportKey(s.now().Add(exportLinkTTL))
	if err := s.store.SaveFile(ctx, key, exportContentType, buf); err != nil {
		logger.ExitMethodWithError("reportService.ExportDonors", err)
		return "", err
	}
	url, err := s.store.GenerateDownloadURL(ctx, key, exportLinkTTL)
	if err != nil {
		logger.ExitMethodWithError("reportService.ExportDonors", err)
		return "", err
	}

	logger.ExitMethod("reportService.ExportDonors", "key", key, "rows", len(donors))
	return url, nil
}

func (s *reportService) PurgeExpiredExports(ctx context.Context) (int, error) {
	logger.EnterMethod("reportService.PurgeExpiredExports")

	keys, err := s.store.ListFiles(ctx)
	if err != nil {
		logger.ExitMethodWithError("reportService.PurgeExpiredExports", err)
		return 0, err
	}
	now := s.now()
	purged := 0
	for _, key := range keys {
		expiresAt, ok := storage.ReportExpiry(key)
		if !ok || now.Before(expiresAt) {
			continue
		}
		if err := s.store.DeleteFile(ctx, key); err != nil {
			logger.WarnContext(ctx, "Failed to delete expired export", "key", key, "error", err)
			continue
		}
		purged++
	}

	logger.ExitMethod("reportService.PurgeExpiredExports", "purged", purged, "scanned", len(keys))
	return purged, nil
}

// BuildDonorWorkbook renders donors into a single-sheet workbook with a header row.
func BuildDonorWorkbook(donors []domain.Donor, counts map[int32]int) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, d := range donors {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{
			d.ID, d.Name, d.Email, d.Phone, string(d.BloodType), d.City, d.Age,
			d.IsEligible, formatDay(d.LastDonationDate), formatDay(d.NextEligibleDate), counts[d.ID],
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
