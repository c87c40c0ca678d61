// Package capture manages acquisition of photo artifacts from a device
// camera or gallery. The session is a small state machine
// (idle → camera active → preview → confirm/retake) over injected device
// capabilities; the low-level camera and GPS access live behind the
// Camera and Locator interfaces.
package capture

import (
	"context"
	"errors"

	"github.com/inspecta/inspecta/pkg/models"
)

// Facing selects the device camera.
type Facing string

const (
	FacingFront Facing = "user"
	FacingBack  Facing = "environment"
)

// State is the capture session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateCameraActive State = "camera_active"
	StatePreview      State = "photo_preview"
	StateError        State = "error"
	StateClosed       State = "closed"
)

// GeoPolicy controls how often a session requests a position fix.
type GeoPolicy string

const (
	// GeoPerSession requests geolocation once when the camera starts.
	GeoPerSession GeoPolicy = "once-per-session"
	// GeoPerCapture requests geolocation for every captured photo.
	GeoPerCapture GeoPolicy = "once-per-capture"
)

// Preferred capture resolution; the device may downgrade.
const (
	IdealWidth  = 1920
	IdealHeight = 1080
)

// DefaultQuality is the JPEG encoding quality for stills.
const DefaultQuality = 0.95

// DefaultMaxPhotos bounds a session when the step declares no quota.
const DefaultMaxPhotos = 10

var (
	ErrNoCamera       = errors.New("no camera capability configured")
	ErrSessionClosed  = errors.New("capture session closed")
	ErrSessionFailed  = errors.New("capture session failed; re-invoke capture to retry")
	ErrNotActive      = errors.New("camera is not active")
	ErrNothingPending = errors.New("no photo pending confirmation")
)

// Frame is a single still grabbed from a live stream, already encoded.
type Frame struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// StreamOptions are the constraints passed to the device when opening a
// stream.
type StreamOptions struct {
	Facing  Facing
	Width   int
	Height  int
	Quality float64
}

// Stream is a live camera stream.
type Stream interface {
	// Grab snapshots the current frame as an encoded still.
	Grab(ctx context.Context) (*Frame, error)
	// Stop releases the underlying media tracks.
	Stop() error
}

// Camera opens device camera streams. Opening may suspend indefinitely
// pending a user permission grant; callers pass a context they control.
type Camera interface {
	Open(ctx context.Context, opts StreamOptions) (Stream, error)
}

// Locator resolves the device position. Implementations bound their own
// timeout; failures are expected and never fatal to capture.
type Locator interface {
	Current(ctx context.Context) (*models.Geolocation, error)
}

// ImportedFile is a gallery selection entering the session without going
// through the camera states.
type ImportedFile struct {
	Name        string
	ContentType string
	Data        []byte
}
