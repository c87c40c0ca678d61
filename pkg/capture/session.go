package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inspecta/inspecta/pkg/models"
)

// PreviewFactory builds the preview handle for a pending photo. The
// default keeps the still in memory and needs no release work; tests and
// hosts that materialize previews elsewhere supply their own.
type PreviewFactory func(filename string) *models.PreviewHandle

// Config wires a Session to its device capabilities and its caller.
type Config struct {
	Camera  Camera
	Locator Locator // optional; nil disables geotagging

	// OnCapture receives each confirmed artifact; ownership transfers to
	// the caller. OnClose fires exactly once when the session ends.
	OnCapture func(photo *models.CapturedPhoto)
	OnClose   func()

	// MaxPhotos is the step quota including CurrentCount photos already
	// confirmed elsewhere. Zero applies DefaultMaxPhotos.
	MaxPhotos    int
	CurrentCount int

	Facing    Facing
	GeoPolicy GeoPolicy
	Quality   float64
	Device    *models.DeviceInfo
	Previews  PreviewFactory
	Logger    *slog.Logger
}

// Session drives one camera/gallery capture interaction. All methods are
// safe for concurrent use with the background geolocation fetch.
type Session struct {
	cfg Config

	mu        sync.Mutex
	state     State
	stream    Stream
	pending   *models.CapturedPhoto
	location  *models.Geolocation
	confirmed int
	failure   string
	closed    bool
}

// NewSession returns an idle session. StartCamera or ImportFiles begins
// the interaction.
func NewSession(cfg Config) *Session {
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = DefaultMaxPhotos
	}

	if cfg.Quality <= 0 || cfg.Quality > 1 {
		cfg.Quality = DefaultQuality
	}

	if cfg.Facing == "" {
		cfg.Facing = FacingBack
	}

	if cfg.GeoPolicy == "" {
		cfg.GeoPolicy = GeoPerSession
	}

	if cfg.Previews == nil {
		cfg.Previews = func(filename string) *models.PreviewHandle {
			return models.NewPreviewHandle("mem://"+filename, nil)
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Session{
		cfg:       cfg,
		state:     StateIdle,
		confirmed: cfg.CurrentCount,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cfg.Facing
}

// FailureMessage is the user-facing message after a camera failure.
func (s *Session) FailureMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failure
}

// Location returns the latest position fix, if one has arrived.
func (s *Session) Location() *models.Geolocation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.location
}

// StartCamera opens a live stream with the preferred resolution. A
// permission or hardware failure is terminal for this session instance:
// the state moves to StateError with a user-facing message and only
// Close remains usable.
func (s *Session) StartCamera(ctx context.Context) error {
	s.mu.Lock()

	switch s.state {
	case StateClosed:
		s.mu.Unlock()

		return ErrSessionClosed
	case StateError:
		s.mu.Unlock()

		return ErrSessionFailed
	}

	if s.cfg.Camera == nil {
		s.mu.Unlock()

		return ErrNoCamera
	}

	// Reopening straight from preview discards the unconfirmed photo the
	// same way RetakePhoto does; its preview must not leak until Close.
	if s.pending != nil {
		if err := s.pending.Preview.Release(); err != nil {
			s.cfg.Logger.Warn("failed to release preview", "error", err)
		}

		s.pending = nil
	}

	opts := StreamOptions{
		Facing:  s.cfg.Facing,
		Width:   IdealWidth,
		Height:  IdealHeight,
		Quality: s.cfg.Quality,
	}
	s.mu.Unlock()

	stream, err := s.cfg.Camera.Open(ctx, opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		if stream != nil {
			_ = stream.Stop()
		}

		return ErrSessionClosed
	}

	if err != nil {
		s.state = StateError
		s.failure = "Não foi possível acessar a câmera. Verifique as permissões."
		s.cfg.Logger.Error("failed to open camera stream", "error", err)

		return err
	}

	s.stream = stream
	s.state = StateCameraActive

	if s.cfg.GeoPolicy == GeoPerSession && s.location == nil {
		s.requestLocationLocked(ctx, nil)
	}

	return nil
}

// SwitchCamera stops the stream, flips facing and restarts. The brief
// unavailability window between stop and restart is accepted.
func (s *Session) SwitchCamera(ctx context.Context) error {
	s.mu.Lock()

	if s.state != StateCameraActive {
		s.mu.Unlock()

		return ErrNotActive
	}

	s.stopStreamLocked()
	s.state = StateIdle

	if s.cfg.Facing == FacingFront {
		s.cfg.Facing = FacingBack
	} else {
		s.cfg.Facing = FacingFront
	}
	s.mu.Unlock()

	return s.StartCamera(ctx)
}

// CapturePhoto snapshots the current frame into a still, stops the live
// stream and moves to preview. Geolocation is attached best-effort and
// never blocks the capture.
func (s *Session) CapturePhoto(ctx context.Context) error {
	s.mu.Lock()

	if s.state != StateCameraActive || s.stream == nil {
		s.mu.Unlock()

		return ErrNotActive
	}

	stream := s.stream
	s.mu.Unlock()

	frame, err := stream.Grab(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	filename := photoFilename(now)

	photo := &models.CapturedPhoto{
		Data:        frame.Data,
		ContentType: frame.ContentType,
		Filename:    filename,
		CapturedAt:  now,
		Device:      s.cfg.Device,
		Preview:     s.cfg.Previews(filename),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		_ = photo.Preview.Release()

		return ErrSessionClosed
	}

	photo.Location = s.location
	s.pending = photo
	s.stopStreamLocked()
	s.state = StatePreview

	if s.cfg.GeoPolicy == GeoPerCapture {
		s.requestLocationLocked(ctx, photo)
	}

	return nil
}

// ConfirmPhoto hands the pending artifact to the caller. If the step
// quota is not yet reached the camera restarts for continuous capture;
// otherwise the session closes.
func (s *Session) ConfirmPhoto(ctx context.Context) error {
	s.mu.Lock()

	if s.state != StatePreview || s.pending == nil {
		s.mu.Unlock()

		return ErrNothingPending
	}

	photo := s.pending
	s.pending = nil
	s.confirmed++
	remaining := s.cfg.MaxPhotos - s.confirmed
	onCapture := s.cfg.OnCapture
	s.state = StateIdle
	s.mu.Unlock()

	if onCapture != nil {
		onCapture(photo)
	}

	if remaining > 0 {
		return s.StartCamera(ctx)
	}

	return s.Close()
}

// RetakePhoto discards the pending preview, releasing its resource, and
// restarts the camera.
func (s *Session) RetakePhoto(ctx context.Context) error {
	s.mu.Lock()

	if s.state != StatePreview || s.pending == nil {
		s.mu.Unlock()

		return ErrNothingPending
	}

	if err := s.pending.Preview.Release(); err != nil {
		s.cfg.Logger.Warn("failed to release preview", "error", err)
	}

	s.pending = nil
	s.state = StateIdle
	s.mu.Unlock()

	return s.StartCamera(ctx)
}

// ImportFiles accepts a gallery selection as a batch of confirmed
// artifacts, bypassing the camera states. Each file is geotagged
// best-effort with the session's latest fix. A selection larger than the
// remaining quota is truncated to it, and the session closes once the
// quota is met.
func (s *Session) ImportFiles(ctx context.Context, files []ImportedFile) error {
	s.mu.Lock()

	if s.state == StateClosed {
		s.mu.Unlock()

		return ErrSessionClosed
	}

	remaining := s.cfg.MaxPhotos - s.confirmed
	if remaining <= 0 {
		s.mu.Unlock()

		return s.Close()
	}

	if len(files) > remaining {
		files = files[:remaining]
	}

	if s.cfg.Locator != nil && s.location == nil {
		s.requestLocationLocked(ctx, nil)
	}

	location := s.location
	onCapture := s.cfg.OnCapture
	now := time.Now()

	photos := make([]*models.CapturedPhoto, 0, len(files))

	for _, file := range files {
		name := file.Name
		if name == "" {
			name = photoFilename(now)
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}

		photos = append(photos, &models.CapturedPhoto{
			Data:        file.Data,
			ContentType: contentType,
			Filename:    name,
			CapturedAt:  now,
			Location:    location,
			Device:      s.cfg.Device,
			Preview:     s.cfg.Previews(name),
		})
	}

	s.confirmed += len(photos)
	quotaMet := s.confirmed >= s.cfg.MaxPhotos
	s.mu.Unlock()

	if onCapture != nil {
		for _, photo := range photos {
			onCapture(photo)
		}
	}

	if quotaMet {
		return s.Close()
	}

	return nil
}

// Close tears the session down from any state: active media tracks are
// stopped and the unconfirmed preview, if any, is released. Safe to call
// repeatedly and from an external cancellation path.
func (s *Session) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	s.stopStreamLocked()

	if s.pending != nil {
		if err := s.pending.Preview.Release(); err != nil {
			s.cfg.Logger.Warn("failed to release preview on close", "error", err)
		}

		s.pending = nil
	}

	s.state = StateClosed
	onClose := s.cfg.OnClose
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}

	return nil
}

// stopStreamLocked stops the live stream. Caller holds s.mu.
func (s *Session) stopStreamLocked() {
	if s.stream == nil {
		return
	}

	if err := s.stream.Stop(); err != nil {
		s.cfg.Logger.Warn("failed to stop media stream", "error", err)
	}

	s.stream = nil
}

// requestLocationLocked fires an asynchronous position fix. When target
// is non-nil the fix lands on that pending photo if it is still pending;
// otherwise it becomes the session location. Denial or timeout only logs.
// Caller holds s.mu.
func (s *Session) requestLocationLocked(ctx context.Context, target *models.CapturedPhoto) {
	if s.cfg.Locator == nil {
		return
	}

	go func() {
		location, err := s.cfg.Locator.Current(ctx)
		if err != nil {
			s.cfg.Logger.Warn("geolocation unavailable", "error", err)

			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		s.location = location

		if target != nil && s.pending == target {
			target.Location = location
		}
	}()
}

func photoFilename(t time.Time) string {
	return "photo_" + t.UTC().Format("20060102_150405.000") + ".jpg"
}
