package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cascadiaherp/shellwatch/internal/observation"
)

// fakeLibrary is a scriptable MediaLibrary.
type fakeLibrary struct {
	granted    bool
	permErr    error
	assets     []Asset
	canceled   bool
	pickErr    error
	pickCalled bool
}

func (f *fakeLibrary) RequestPermission(ctx context.Context) (bool, error) {
	return f.granted, f.permErr
}

func (f *fakeLibrary) Pick(ctx context.Context) ([]Asset, bool, error) {
	f.pickCalled = true
	return f.assets, f.canceled, f.pickErr
}

type fakeCamera struct {
	granted  bool
	assets   []Asset
	canceled bool
	err      error
}

func (f *fakeCamera) RequestPermission(ctx context.Context) (bool, error) {
	return f.granted, nil
}

func (f *fakeCamera) Capture(ctx context.Context) ([]Asset, bool, error) {
	return f.assets, f.canceled, f.err
}

type fakeLocator struct {
	granted bool
	fix     Coordinate
	err     error
}

func (f *fakeLocator) RequestPermission(ctx context.Context) (bool, error) {
	return f.granted, nil
}

func (f *fakeLocator) Fix(ctx context.Context) (Coordinate, error) {
	return f.fix, f.err
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	titles []string
	errs   []error
}

func (r *recordingNotifier) Notify(titleKey, bodyKey string, err error) {
	r.titles = append(r.titles, titleKey)
	r.errs = append(r.errs, err)
}

func newOrchestrator(t *testing.T, library *fakeLibrary, camera *fakeCamera, locator *fakeLocator, notifier *recordingNotifier) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(OrchestratorConfig{
		Library:  library,
		Camera:   camera,
		Locator:  locator,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}
	return o
}

func TestPickFromLibrary_AppendsNormalizedAssets(t *testing.T) {
	library := &fakeLibrary{
		granted: true,
		assets: []Asset{
			{URI: "file:///dcim/IMG_1.jpg", Filename: "IMG_1.jpg", MIMEType: "image/jpeg"},
			{URI: "file:///dcim/IMG_2.png", MIMEType: "image/png"},
		},
	}
	notifier := &recordingNotifier{}
	o := newOrchestrator(t, library, &fakeCamera{}, &fakeLocator{}, notifier)

	draft := observation.NewDraft(time.Now())
	draft.AddPhotos(observation.Photo{URI: "file:///existing.jpg", Filename: "existing.jpg"})

	if err := o.PickFromLibrary(context.Background(), draft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(draft.Photos) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(draft.Photos))
	}
	if draft.Photos[1].Filename != "IMG_1.jpg" {
		t.Errorf("expected picked order preserved, got %s", draft.Photos[1].Filename)
	}
	// A source without a filename derives one from the URI.
	if draft.Photos[2].Filename != "IMG_2.png" {
		t.Errorf("expected derived filename, got %s", draft.Photos[2].Filename)
	}
	if len(notifier.titles) != 0 {
		t.Errorf("expected no notifications, got %v", notifier.titles)
	}
}

func TestPickFromLibrary_PermissionDenied(t *testing.T) {
	library := &fakeLibrary{granted: false}
	notifier := &recordingNotifier{}
	o := newOrchestrator(t, library, &fakeCamera{}, &fakeLocator{}, notifier)

	draft := observation.NewDraft(time.Now())
	if err := o.PickFromLibrary(context.Background(), draft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(draft.Photos) != 0 {
		t.Error("expected photos unchanged on denial")
	}
	if library.pickCalled {
		t.Error("expected picker not launched after denial")
	}
	if len(notifier.titles) != 1 || notifier.titles[0] != "observations.alert.permission.library.title" {
		t.Errorf("expected permission notification, got %v", notifier.titles)
	}
}

func TestPickFromLibrary_Canceled(t *testing.T) {
	library := &fakeLibrary{granted: true, canceled: true, assets: []Asset{{URI: "file:///x.jpg"}}}
	notifier := &recordingNotifier{}
	o := newOrchestrator(t, library, &fakeCamera{}, &fakeLocator{}, notifier)

	draft := observation.NewDraft(time.Now())
	if err := o.PickFromLibrary(context.Background(), draft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.Photos) != 0 {
		t.Error("expected photos unchanged on cancel")
	}
	if len(notifier.titles) != 0 {
		t.Errorf("expected no notification on cancel, got %v", notifier.titles)
	}
}

func TestPickFromLibrary_DeviceError(t *testing.T) {
	deviceErr := errors.New("library unavailable")
	library := &fakeLibrary{granted: true, pickErr: deviceErr}
	notifier := &recordingNotifier{}
	o := newOrchestrator(t, library, &fakeCamera{}, &fakeLocator{}, notifier)

	draft := observation.NewDraft(time.Now())
	if err := o.PickFromLibrary(context.Background(), draft); err != nil {
		t.Fatalf("device errors are notified, not returned: %v", err)
	}
	if len(draft.Photos) != 0 {
		t.Error("expected photos unchanged on device error")
	}
	if len(notifier.errs) != 1 || !errors.Is(notifier.errs[0], deviceErr) {
		t.Error("expected the device error surfaced in the notification")
	}
}

func TestTakePhoto(t *testing.T) {
	tests := []struct {
		name       string
		camera     *fakeCamera
		wantPhotos int
		wantTitle  string
	}{
		{
			name:       "captured photo appended",
			camera:     &fakeCamera{granted: true, assets: []Asset{{URI: "file:///cam.jpg", Filename: "cam.jpg"}}},
			wantPhotos: 1,
		},
		{
			name:       "denied leaves draft unchanged",
			camera:     &fakeCamera{granted: false},
			wantPhotos: 0,
			wantTitle:  "observations.alert.permission.camera.title",
		},
		{
			name:       "hardware fault notifies",
			camera:     &fakeCamera{granted: true, err: errors.New("sensor fault")},
			wantPhotos: 0,
			wantTitle:  "observations.alert.cameraError.title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			o := newOrchestrator(t, &fakeLibrary{}, tt.camera, &fakeLocator{}, notifier)

			draft := observation.NewDraft(time.Now())
			if err := o.TakePhoto(context.Background(), draft); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(draft.Photos) != tt.wantPhotos {
				t.Errorf("expected %d photos, got %d", tt.wantPhotos, len(draft.Photos))
			}
			if tt.wantTitle == "" && len(notifier.titles) != 0 {
				t.Errorf("expected no notification, got %v", notifier.titles)
			}
			if tt.wantTitle != "" && (len(notifier.titles) != 1 || notifier.titles[0] != tt.wantTitle) {
				t.Errorf("expected %s, got %v", tt.wantTitle, notifier.titles)
			}
		})
	}
}

func TestUseCurrentLocation(t *testing.T) {
	locator := &fakeLocator{granted: true, fix: Coordinate{Latitude: 45.512345678, Longitude: -122.657890123}}
	notifier := &recordingNotifier{}
	o := newOrchestrator(t, &fakeLibrary{}, &fakeCamera{}, locator, notifier)

	draft := observation.NewDraft(time.Now())
	draft.LocationName = "Oaks Bottom"

	if err := o.UseCurrentLocation(context.Background(), draft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.Latitude != "45.512346" {
		t.Errorf("expected latitude formatted to 6 decimals, got %q", draft.Latitude)
	}
	if draft.Longitude != "-122.657890" {
		t.Errorf("expected longitude formatted to 6 decimals, got %q", draft.Longitude)
	}
	// The free-text name is user-owned and never overwritten by a fix.
	if draft.LocationName != "Oaks Bottom" {
		t.Errorf("expected location name untouched, got %q", draft.LocationName)
	}
}

func TestUseCurrentLocation_DenialAndError(t *testing.T) {
	tests := []struct {
		name    string
		locator *fakeLocator
	}{
		{name: "permission denied", locator: &fakeLocator{granted: false}},
		{name: "fix error", locator: &fakeLocator{granted: true, err: errors.New("gps timeout")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			o := newOrchestrator(t, &fakeLibrary{}, &fakeCamera{}, tt.locator, notifier)

			draft := observation.NewDraft(time.Now())
			draft.Latitude = "44.000000"
			draft.Longitude = "-123.000000"

			if err := o.UseCurrentLocation(context.Background(), draft); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if draft.Latitude != "44.000000" || draft.Longitude != "-123.000000" {
				t.Error("expected coordinates unchanged")
			}
			if len(notifier.titles) != 1 {
				t.Errorf("expected one notification, got %d", len(notifier.titles))
			}
		})
	}
}
