package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cascadiaherp/shellwatch/internal/capture"
	"github.com/cascadiaherp/shellwatch/internal/config"
	"github.com/cascadiaherp/shellwatch/internal/db"
	"github.com/cascadiaherp/shellwatch/internal/geo"
	"github.com/cascadiaherp/shellwatch/internal/i18n"
	"github.com/cascadiaherp/shellwatch/internal/middleware"
	"github.com/cascadiaherp/shellwatch/internal/observation"
	"github.com/cascadiaherp/shellwatch/internal/species"
	"github.com/cascadiaherp/shellwatch/internal/storage"
)

var (
	observerID      string
	photoPaths      []string
	latitude        float64
	longitude       float64
	locationName    string
	countFlag       int
	speciesFlags    []string
	activityFlags   []string
	turtleNoteFlags []string
	seenAtFlag      string
	actionFlag      string
	actionOther     string
	additionalNotes string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a turtle observation",
	Long: `Submit uploads the given photos and records one row per reported
turtle, exactly like the app's submit button. Per-turtle flags repeat in
turtle order: the first --species pairs with the first --activities and
the first --turtle-notes.`,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&observerID, "observer", "", "observer account ID to record the sighting under")
	submitCmd.Flags().StringArrayVar(&photoPaths, "photo", nil, "path to a photo of the sighting (repeatable)")
	submitCmd.Flags().Float64Var(&latitude, "lat", 0, "sighting latitude in decimal degrees")
	submitCmd.Flags().Float64Var(&longitude, "lng", 0, "sighting longitude in decimal degrees")
	submitCmd.Flags().StringVar(&locationName, "location", "", "optional place name for the sighting")
	submitCmd.Flags().IntVar(&countFlag, "count", 1, "how many turtles were observed")
	submitCmd.Flags().StringArrayVar(&speciesFlags, "species", nil, "species ID for each turtle in order (repeatable; see 'field species')")
	submitCmd.Flags().StringArrayVar(&activityFlags, "activities", nil, "comma-separated activities for each turtle in order (repeatable)")
	submitCmd.Flags().StringArrayVar(&turtleNoteFlags, "turtle-notes", nil, "notes for each turtle in order (repeatable)")
	submitCmd.Flags().StringVar(&seenAtFlag, "seen-at", "", "when the sighting happened, RFC 3339 (default: now)")
	submitCmd.Flags().StringVar(&actionFlag, "action", string(observation.ActionObserved), "action taken")
	submitCmd.Flags().StringVar(&actionOther, "action-other", "", "description when --action is Other")
	submitCmd.Flags().StringVar(&additionalNotes, "notes", "", "additional notes for the whole sighting")

	_ = submitCmd.MarkFlagRequired("observer")
	_ = submitCmd.MarkFlagRequired("lat")
	_ = submitCmd.MarkFlagRequired("lng")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	translator := bundle.Translator(localeFlag)

	cfg, errs := config.Load(configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		return fmt.Errorf("invalid configuration")
	}
	if !cfg.StorageEnabled() {
		return fmt.Errorf("photo storage is not configured; submission needs the full STORAGE_* settings")
	}

	catalog, err := species.Load()
	if err != nil {
		return fmt.Errorf("failed to load species catalog: %w", err)
	}

	draft, err := buildFieldDraft(cmd.Context(), translator, catalog)
	if err != nil {
		return err
	}

	conn, err := db.Open(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	store, err := storage.NewStore(storage.StoreConfig{
		BucketName:      cfg.StorageBucketName,
		AccessKeyID:     cfg.StorageAccessKeyID,
		SecretAccessKey: cfg.StorageSecretAccessKey,
		Endpoint:        cfg.StorageEndpoint,
		PublicBaseURL:   cfg.StoragePublicBaseURL,
		MaxSizeMB:       cfg.StorageMaxUploadSizeMB,
	})
	if err != nil {
		return fmt.Errorf("failed to configure photo storage: %w", err)
	}

	logger := middleware.NewLogger(cfg.Env)
	submitter, err := observation.NewSubmitter(observation.SubmitterConfig{
		Store:  store,
		Repo:   observation.NewPostgresRepository(conn, logger),
		Assets: observation.FileAssets{},
		Labeler: func(number int) string {
			return translator.T("observations.notePrefix", map[string]string{
				"number": strconv.Itoa(number),
			})
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create submitter: %w", err)
	}

	result, err := submitter.Submit(cmd.Context(), observerID, draft)
	if err != nil {
		var verr *observation.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s", translator.T(verr.MessageKey+".body", nil))
		}
		return fmt.Errorf("submission failed: %w", err)
	}

	fmt.Println(translator.T("observations.alert.submissionSuccess.body", nil))
	fmt.Printf("Rows inserted: %d\n", result.RowsInserted)
	for _, url := range result.PhotoURLs {
		fmt.Printf("Photo: %s\n", url)
	}

	// Shareable coarse grid cell; precise coordinates stay in the database.
	cell := geo.Encode(latitude, longitude, geo.DefaultPrecision)
	fmt.Printf("Public grid cell: %s\n", geo.PublicCell(cell))
	return nil
}

// buildFieldDraft assembles an observation draft from the submit flags,
// running photo and location acquisition through the same orchestrator the
// app uses so permission and error handling stay uniform.
func buildFieldDraft(ctx context.Context, translator *i18n.Translator, catalog *species.Catalog) (*observation.Draft, error) {
	draft := observation.NewDraft(time.Now())

	orch, err := capture.NewOrchestrator(capture.OrchestratorConfig{
		Library:  &pathLibrary{paths: photoPaths},
		Camera:   noCamera{},
		Locator:  staticLocator{lat: latitude, lng: longitude},
		Notifier: terminalNotifier{translator: translator},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up capture: %w", err)
	}
	if err := orch.PickFromLibrary(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to attach photos: %w", err)
	}
	if err := orch.UseCurrentLocation(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to set location: %w", err)
	}

	draft.LocationName = locationName
	draft.SetCount(strconv.Itoa(countFlag))
	draft.AdditionalNotes = additionalNotes

	for i, id := range speciesFlags {
		if !catalog.IsSelectable(id) {
			return nil, fmt.Errorf("unknown species %q (run 'field species' for the list)", id)
		}
		draft.SelectSpecies(i, observation.SpeciesID(id))
	}
	for i, raw := range activityFlags {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			activity, ok := activityByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown activity %q (one of %v)", name, observation.ActivityOptions)
			}
			draft.ToggleActivity(i, activity)
		}
	}
	for i, notes := range turtleNoteFlags {
		draft.SetNotes(i, notes)
	}

	if seenAtFlag != "" {
		seenAt, err := time.Parse(time.RFC3339, seenAtFlag)
		if err != nil {
			return nil, fmt.Errorf("--seen-at must be RFC 3339: %w", err)
		}
		draft.SeenAt = seenAt
	}

	action, ok := actionByName(actionFlag)
	if !ok {
		return nil, fmt.Errorf("unknown action %q (one of %v)", actionFlag, observation.ActionOptions)
	}
	draft.ActionTaken = action
	if action == observation.ActionOther {
		draft.ActionOther = actionOther
	}

	return draft, nil
}

func activityByName(name string) (observation.Activity, bool) {
	for _, option := range observation.ActivityOptions {
		if strings.EqualFold(string(option), name) {
			return option, true
		}
	}
	return "", false
}

func actionByName(name string) (observation.Action, bool) {
	for _, option := range observation.ActionOptions {
		if strings.EqualFold(string(option), name) {
			return option, true
		}
	}
	return "", false
}

// pathLibrary adapts the --photo flag paths to the media library interface.
type pathLibrary struct {
	paths []string
}

func (p *pathLibrary) RequestPermission(ctx context.Context) (bool, error) { return true, nil }

func (p *pathLibrary) Pick(ctx context.Context) ([]capture.Asset, bool, error) {
	assets := make([]capture.Asset, 0, len(p.paths))
	for _, path := range p.paths {
		if _, err := os.Stat(path); err != nil {
			return nil, false, fmt.Errorf("photo %s: %w", path, err)
		}
		assets = append(assets, capture.Asset{
			URI:      path,
			Filename: filepath.Base(path),
			MIMEType: mimeFromPath(path),
		})
	}
	return assets, false, nil
}

// noCamera satisfies the camera dependency; the CLI never captures live.
type noCamera struct{}

func (noCamera) RequestPermission(ctx context.Context) (bool, error) { return false, nil }

func (noCamera) Capture(ctx context.Context) ([]capture.Asset, bool, error) {
	return nil, true, nil
}

// staticLocator serves the --lat/--lng flag values as the device fix.
type staticLocator struct {
	lat, lng float64
}

func (staticLocator) RequestPermission(ctx context.Context) (bool, error) { return true, nil }

func (l staticLocator) Fix(ctx context.Context) (capture.Coordinate, error) {
	return capture.Coordinate{Latitude: l.lat, Longitude: l.lng}, nil
}

// terminalNotifier prints capture alerts to stderr in the chosen locale.
type terminalNotifier struct {
	translator *i18n.Translator
}

func (n terminalNotifier) Notify(titleKey, bodyKey string, err error) {
	body := n.translator.T(bodyKey, nil)
	if err != nil && err.Error() != "" {
		body = err.Error()
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", n.translator.T(titleKey, nil), body)
}

func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return storage.MIMEImagePNG
	case ".heic":
		return storage.MIMEImageHEIC
	case ".webp":
		return storage.MIMEImageWebP
	default:
		return storage.MIMEImageJPEG
	}
}
