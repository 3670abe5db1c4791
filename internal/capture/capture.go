// Package capture acquires photo assets and geolocation fixes for an
// observation draft, handling device permission prompts and hardware errors
// without corrupting existing draft state.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/cascadiaherp/shellwatch/internal/observation"
)

// ErrBusy is returned when a capture operation is started while a previous
// one of the same kind is still in flight. Photo picks and location fetches
// are independent and never block each other.
var ErrBusy = errors.New("capture operation already in flight")

// Asset is a raw photo asset as returned by a device source, before
// normalization into a draft photo.
type Asset struct {
	URI      string
	Filename string
	MIMEType string
}

// Coordinate is a device location fix in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// MediaLibrary is the device photo-library collaborator. Pick reports
// canceled=true when the user backed out of the picker without choosing.
type MediaLibrary interface {
	RequestPermission(ctx context.Context) (bool, error)
	Pick(ctx context.Context) (assets []Asset, canceled bool, err error)
}

// Camera is the device camera collaborator.
type Camera interface {
	RequestPermission(ctx context.Context) (bool, error)
	Capture(ctx context.Context) (assets []Asset, canceled bool, err error)
}

// Locator is the device location collaborator. Fix reads the
// highest-accuracy position available.
type Locator interface {
	RequestPermission(ctx context.Context) (bool, error)
	Fix(ctx context.Context) (Coordinate, error)
}

// Notifier surfaces a user-facing notification. Keys resolve through the
// localized text catalog; when err is non-nil its message replaces the
// body text, falling back to the key's generic description when empty.
type Notifier interface {
	Notify(titleKey, bodyKey string, err error)
}

// Orchestrator coordinates photo and location acquisition for one draft.
// Device errors are caught here and rendered as notifications rather than
// propagated; the draft is only ever appended to, never corrupted.
type Orchestrator struct {
	library  MediaLibrary
	camera   Camera
	locator  Locator
	notifier Notifier
	logger   *slog.Logger

	pickingPhoto atomic.Bool
	locating     atomic.Bool
}

// OrchestratorConfig wires the device collaborators.
type OrchestratorConfig struct {
	Library  MediaLibrary
	Camera   Camera
	Locator  Locator
	Notifier Notifier
	Logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator from the given configuration.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Library == nil {
		return nil, errors.New("media library is required")
	}
	if cfg.Camera == nil {
		return nil, errors.New("camera is required")
	}
	if cfg.Locator == nil {
		return nil, errors.New("locator is required")
	}
	if cfg.Notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		library:  cfg.Library,
		camera:   cfg.Camera,
		locator:  cfg.Locator,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}, nil
}

// IsPickingPhoto reports whether a photo acquisition is in flight.
func (o *Orchestrator) IsPickingPhoto() bool {
	return o.pickingPhoto.Load()
}

// IsLocating reports whether a location fetch is in flight.
func (o *Orchestrator) IsLocating() bool {
	return o.locating.Load()
}

// PickFromLibrary requests library permission and, when granted, lets the
// user choose photos. Denial and cancellation leave the draft unchanged.
// Chosen assets are normalized and appended in the order returned.
func (o *Orchestrator) PickFromLibrary(ctx context.Context, draft *observation.Draft) error {
	if !o.pickingPhoto.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.pickingPhoto.Store(false)

	granted, err := o.library.RequestPermission(ctx)
	if err != nil {
		o.notifier.Notify("observations.alert.photoPickerError.title", "observations.alert.photoPickerError.body", err)
		return nil
	}
	if !granted {
		o.notifier.Notify("observations.alert.permission.library.title", "observations.alert.permission.library.body", nil)
		return nil
	}

	assets, canceled, err := o.library.Pick(ctx)
	if err != nil {
		o.logger.Debug("photo library pick failed", slog.String("error", err.Error()))
		o.notifier.Notify("observations.alert.photoPickerError.title", "observations.alert.photoPickerError.body", err)
		return nil
	}
	if canceled {
		return nil
	}

	o.addAssets(draft, assets)
	return nil
}

// TakePhoto requests camera permission and, when granted, captures a photo.
// Same denial/cancel/error behavior as PickFromLibrary.
func (o *Orchestrator) TakePhoto(ctx context.Context, draft *observation.Draft) error {
	if !o.pickingPhoto.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.pickingPhoto.Store(false)

	granted, err := o.camera.RequestPermission(ctx)
	if err != nil {
		o.notifier.Notify("observations.alert.cameraError.title", "observations.alert.cameraError.body", err)
		return nil
	}
	if !granted {
		o.notifier.Notify("observations.alert.permission.camera.title", "observations.alert.permission.camera.body", nil)
		return nil
	}

	assets, canceled, err := o.camera.Capture(ctx)
	if err != nil {
		o.logger.Debug("camera capture failed", slog.String("error", err.Error()))
		o.notifier.Notify("observations.alert.cameraError.title", "observations.alert.cameraError.body", err)
		return nil
	}
	if canceled {
		return nil
	}

	o.addAssets(draft, assets)
	return nil
}

// UseCurrentLocation requests foreground location permission and overwrites
// the draft's coordinate text with the device fix, formatted to six decimal
// places. The location name field is never altered.
func (o *Orchestrator) UseCurrentLocation(ctx context.Context, draft *observation.Draft) error {
	if !o.locating.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.locating.Store(false)

	granted, err := o.locator.RequestPermission(ctx)
	if err != nil {
		o.notifier.Notify("observations.alert.locationError.title", "observations.alert.locationError.body", err)
		return nil
	}
	if !granted {
		o.notifier.Notify("observations.alert.permission.location.title", "observations.alert.permission.location.body", nil)
		return nil
	}

	fix, err := o.locator.Fix(ctx)
	if err != nil {
		o.logger.Debug("location fix failed", slog.String("error", err.Error()))
		o.notifier.Notify("observations.alert.locationError.title", "observations.alert.locationError.body", err)
		return nil
	}

	draft.Latitude = strconv.FormatFloat(fix.Latitude, 'f', 6, 64)
	draft.Longitude = strconv.FormatFloat(fix.Longitude, 'f', 6, 64)
	return nil
}

func (o *Orchestrator) addAssets(draft *observation.Draft, assets []Asset) {
	if len(assets) == 0 {
		return
	}
	photos := make([]observation.Photo, 0, len(assets))
	for _, asset := range assets {
		photos = append(photos, observation.NewPhoto(asset.URI, asset.Filename, asset.MIMEType))
	}
	draft.AddPhotos(photos...)
}
