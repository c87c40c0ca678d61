// Package cargosnap exposes the CargoSnap integration surface: listing
// synced files, aggregate stats, and triggering backend sync passes,
// optionally on a schedule.
package cargosnap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/inspecta/inspecta/pkg/models"
)

// DefaultSyncSchedule runs a sync pass every 30 minutes.
const DefaultSyncSchedule = "*/30 * * * *"

// API is the backend surface the service needs. *client.Client satisfies it.
type API interface {
	CargoSnapFiles(ctx context.Context, page, limit int) ([]models.CargoSnapFile, error)
	CargoSnapFileByID(ctx context.Context, id int) (*models.CargoSnapFile, error)
	CargoSnapStats(ctx context.Context) (*models.CargoSnapStats, error)
	TriggerCargoSnapSync(ctx context.Context, downloadImages bool) error
	SyncCargoSnapFile(ctx context.Context, id int, downloadImages bool) error
	DownloadCargoSnapImages(ctx context.Context, id int) error
}

// Service wraps the CargoSnap endpoints and owns the sync schedule.
type Service struct {
	api    API
	logger *slog.Logger
	cron   *cron.Cron
}

func NewService(api API, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger.With("module", "cargosnap"),
	}
}

// Files lists synced files, paginated.
func (s *Service) Files(ctx context.Context, page, limit int) ([]models.CargoSnapFile, error) {
	return s.api.CargoSnapFiles(ctx, page, limit)
}

// File fetches one synced file with its details.
func (s *Service) File(ctx context.Context, id int) (*models.CargoSnapFile, error) {
	return s.api.CargoSnapFileByID(ctx, id)
}

// Stats fetches aggregate counters over the synced file set.
func (s *Service) Stats(ctx context.Context) (*models.CargoSnapStats, error) {
	return s.api.CargoSnapStats(ctx)
}

// Sync triggers one backend sync pass.
func (s *Service) Sync(ctx context.Context, downloadImages bool) error {
	if err := s.api.TriggerCargoSnapSync(ctx, downloadImages); err != nil {
		return fmt.Errorf("failed to trigger sync: %w", err)
	}

	s.logger.Info("sync triggered", "download_images", downloadImages)

	return nil
}

// SyncFile re-syncs a single file.
func (s *Service) SyncFile(ctx context.Context, id int, downloadImages bool) error {
	if err := s.api.SyncCargoSnapFile(ctx, id, downloadImages); err != nil {
		return fmt.Errorf("failed to sync file %d: %w", id, err)
	}

	return nil
}

// DownloadImages pulls the images of one file from the CargoSnap platform.
func (s *Service) DownloadImages(ctx context.Context, id int) error {
	if err := s.api.DownloadCargoSnapImages(ctx, id); err != nil {
		return fmt.Errorf("failed to download images for file %d: %w", id, err)
	}

	return nil
}

// Watch triggers a sync pass on a cron schedule until the context ends.
// A failed pass is logged and the schedule keeps going.
func (s *Service) Watch(ctx context.Context, schedule string, downloadImages bool) error {
	if schedule == "" {
		schedule = DefaultSyncSchedule
	}

	runner := cron.New()

	_, err := runner.AddFunc(schedule, func() {
		if err := s.Sync(ctx, downloadImages); err != nil {
			s.logger.Error("scheduled sync failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	s.cron = runner
	s.logger.Info("sync watcher started", "schedule", schedule)
	runner.Start()

	<-ctx.Done()

	stopCtx := runner.Stop()
	<-stopCtx.Done()

	s.logger.Info("sync watcher stopped")

	return nil
}
