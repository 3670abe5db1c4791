// Package api provides HTTP handlers for submitting and listing observations.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cascadiaherp/shellwatch/internal/i18n"
	"github.com/cascadiaherp/shellwatch/internal/middleware"
	"github.com/cascadiaherp/shellwatch/internal/observation"
	"github.com/cascadiaherp/shellwatch/internal/species"
	"github.com/cascadiaherp/shellwatch/internal/storage"
	"github.com/cascadiaherp/shellwatch/internal/validate"
)

// maxMultipartMemory bounds how much of a submission is buffered in memory
// before spilling to temp files.
const maxMultipartMemory = 32 << 20

// TurtleDetailRequest is one turtle's details inside a submission.
type TurtleDetailRequest struct {
	Species    string   `json:"species"`
	Activities []string `json:"activities"`
	Notes      string   `json:"notes"`
}

// SubmitObservationRequest is the JSON document carried in the
// "observation" part of a multipart POST /observations request. Photos
// travel as file parts named "photos".
type SubmitObservationRequest struct {
	Latitude        string                `json:"latitude"`
	Longitude       string                `json:"longitude"`
	LocationName    string                `json:"locationName"`
	Count           string                `json:"count"`
	Details         []TurtleDetailRequest `json:"details"`
	SeenAt          string                `json:"seenAt"`
	ActionTaken     string                `json:"actionTaken"`
	ActionOther     string                `json:"actionOther"`
	AdditionalNotes string                `json:"additionalNotes"`
}

// SubmitObservationResponse is the success body for POST /observations.
type SubmitObservationResponse struct {
	PhotoURLs    []string `json:"photoUrls"`
	RowsInserted int      `json:"rowsInserted"`
}

// ObservationHandlers holds dependencies for observation HTTP handlers.
// Each observer gets their own submitter so the single-submission guard
// applies per account, not per server.
type ObservationHandlers struct {
	store         observation.ObjectStore
	repo          observation.Repository
	assets        *observation.MemoryAssets
	catalog       *species.Catalog
	translator    *i18n.Translator
	logger        *slog.Logger
	metrics       *observation.Metrics
	timeNow       func() time.Time
	maxPhotoBytes int64

	mu         sync.Mutex
	submitters map[string]*observation.Submitter
}

// ObservationHandlersConfig configures the observation handlers.
type ObservationHandlersConfig struct {
	Store         observation.ObjectStore
	Repo          observation.Repository
	Catalog       *species.Catalog
	Translator    *i18n.Translator
	Logger        *slog.Logger
	Metrics       *observation.Metrics
	TimeNow       func() time.Time
	MaxPhotoBytes int64
}

// NewObservationHandlers creates a new ObservationHandlers instance.
func NewObservationHandlers(cfg ObservationHandlersConfig) (*ObservationHandlers, error) {
	if cfg.Store == nil {
		return nil, errors.New("object store is required")
	}
	if cfg.Repo == nil {
		return nil, errors.New("repository is required")
	}
	if cfg.Translator == nil {
		return nil, errors.New("translator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeNow := cfg.TimeNow
	if timeNow == nil {
		timeNow = time.Now
	}
	maxPhotoBytes := cfg.MaxPhotoBytes
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = 15 << 20
	}
	return &ObservationHandlers{
		store:         cfg.Store,
		repo:          cfg.Repo,
		assets:        observation.NewMemoryAssets(),
		catalog:       cfg.Catalog,
		translator:    cfg.Translator,
		logger:        logger,
		metrics:       cfg.Metrics,
		timeNow:       timeNow,
		maxPhotoBytes: maxPhotoBytes,
		submitters:    make(map[string]*observation.Submitter),
	}, nil
}

// submitterFor returns the observer's submitter, creating it on first use.
func (h *ObservationHandlers) submitterFor(userID string) (*observation.Submitter, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.submitters[userID]; ok {
		return sub, nil
	}

	sub, err := observation.NewSubmitter(observation.SubmitterConfig{
		Store:  h.store,
		Repo:   h.repo,
		Assets: h.assets,
		Labeler: func(number int) string {
			return h.translator.T("observations.notePrefix", map[string]string{
				"number": strconv.Itoa(number),
			})
		},
		Logger:  h.logger,
		Metrics: h.metrics,
		TimeNow: h.timeNow,
	})
	if err != nil {
		return nil, err
	}
	h.submitters[userID] = sub
	return sub, nil
}

// Submit handles POST /observations - uploads the attached photos and
// inserts one row per reported turtle.
func (h *ObservationHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Expected a multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	var req SubmitObservationRequest
	if err := json.Unmarshal([]byte(r.FormValue("observation")), &req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in observation part")
		return
	}

	draft, uris, err := h.buildDraft(r, &req)
	if err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			ctx := middleware.SetErrorCode(r.Context(), reqErr.code)
			WriteError(w, ctx, StatusCodeMapping(reqErr.code), reqErr.code, reqErr.message)
			return
		}
		slog.ErrorContext(r.Context(), "failed to read submission", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to read submission")
		return
	}
	defer h.assets.Release(uris...)

	sub, err := h.submitterFor(userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create submitter", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to process submission")
		return
	}

	result, err := sub.Submit(r.Context(), userID, draft)
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	writeJSON(w, r.Context(), http.StatusCreated, SubmitObservationResponse{
		PhotoURLs:    result.PhotoURLs,
		RowsInserted: result.RowsInserted,
	})
}

// writeSubmitError maps submission failures to HTTP error responses.
func (h *ObservationHandlers) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *observation.ValidationError
	var uperr *observation.UploadError
	var inserr *observation.InsertError

	switch {
	case errors.Is(err, observation.ErrSubmissionInFlight):
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeSubmissionInFlight)
		WriteError(w, ctx, http.StatusConflict, ErrCodeSubmissionInFlight,
			"Another submission is already in progress")
	case errors.As(err, &verr):
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		message := h.translator.T(verr.MessageKey+".body", nil)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, message)
	case errors.As(err, &uperr):
		slog.WarnContext(r.Context(), "photo upload failed",
			"index", uperr.Index, "path", uperr.Path, "error", uperr.Err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeUploadFailed)
		WriteError(w, ctx, http.StatusBadGateway, ErrCodeUploadFailed,
			h.translator.T("observations.alert.submissionError.body", nil))
	case errors.As(err, &inserr):
		slog.ErrorContext(r.Context(), "failed to insert observation rows", "error", inserr.Err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal,
			h.translator.T("observations.alert.submissionError.body", nil))
	default:
		slog.ErrorContext(r.Context(), "submission failed", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Submission failed")
	}
}

// requestError is a client error discovered while building the draft.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, format string, args ...any) *requestError {
	return &requestError{code: code, message: fmt.Sprintf(format, args...)}
}

// buildDraft converts the parsed request into a submission draft,
// registering the uploaded photo bytes in the asset registry. The
// returned URIs must be released once the submission finishes.
func (h *ObservationHandlers) buildDraft(r *http.Request, req *SubmitObservationRequest) (*observation.Draft, []string, error) {
	draft := observation.NewDraft(h.timeNow())

	locationName, err := validate.LocationName(req.LocationName)
	if err != nil {
		return nil, nil, badRequest(ErrCodeValidation, "locationName: %v", err)
	}
	additionalNotes, err := validate.TurtleNotes(req.AdditionalNotes)
	if err != nil {
		return nil, nil, badRequest(ErrCodeValidation, "additionalNotes: %v", err)
	}

	draft.Latitude = req.Latitude
	draft.Longitude = req.Longitude
	draft.LocationName = locationName
	draft.CountText = req.Count
	draft.AdditionalNotes = additionalNotes

	action, err := parseAction(req.ActionTaken)
	if err != nil {
		return nil, nil, badRequest(ErrCodeValidation, "%v", err)
	}
	draft.ActionTaken = action
	if action == observation.ActionOther && req.ActionOther != "" {
		detail, err := validate.ActionDetail(req.ActionOther)
		if err != nil {
			return nil, nil, badRequest(ErrCodeValidation, "actionOther: %v", err)
		}
		draft.ActionOther = detail
	}

	if req.SeenAt != "" {
		seenAt, err := time.Parse(time.RFC3339, req.SeenAt)
		if err != nil {
			return nil, nil, badRequest(ErrCodeValidation, "seenAt must be RFC 3339")
		}
		draft.SeenAt = seenAt
	}

	details, err := h.buildDetails(req.Details)
	if err != nil {
		return nil, nil, err
	}
	draft.Details = details

	uris, err := h.registerPhotos(r, draft)
	if err != nil {
		return nil, nil, err
	}
	return draft, uris, nil
}

func (h *ObservationHandlers) buildDetails(reqs []TurtleDetailRequest) ([]observation.TurtleDetail, error) {
	details := make([]observation.TurtleDetail, 0, len(reqs))
	for i, dr := range reqs {
		detail := observation.NewTurtleDetail()

		if dr.Species != "" {
			if h.catalog != nil && !h.catalog.IsSelectable(dr.Species) {
				return nil, badRequest(ErrCodeValidation, "details[%d]: unknown species %q", i, dr.Species)
			}
			detail.SpeciesID = observation.SpeciesID(dr.Species)
		}

		for _, raw := range dr.Activities {
			activity, ok := parseActivity(raw)
			if !ok {
				return nil, badRequest(ErrCodeValidation, "details[%d]: unknown activity %q", i, raw)
			}
			detail.Activities[activity] = true
		}

		notes, err := validate.TurtleNotes(dr.Notes)
		if err != nil {
			return nil, badRequest(ErrCodeValidation, "details[%d].notes: %v", i, err)
		}
		detail.Notes = notes

		details = append(details, detail)
	}
	return details, nil
}

// registerPhotos reads the "photos" file parts into the asset registry
// and attaches them to the draft in upload order.
func (h *ObservationHandlers) registerPhotos(r *http.Request, draft *observation.Draft) ([]string, error) {
	var uris []string
	for _, header := range r.MultipartForm.File["photos"] {
		if header.Size > h.maxPhotoBytes {
			h.assets.Release(uris...)
			return nil, badRequest(ErrCodeValidation, "photo %s exceeds the %d MB limit",
				header.Filename, h.maxPhotoBytes>>20)
		}

		contentType := header.Header.Get("Content-Type")
		if contentType != "" {
			if err := storage.ValidateContentType(contentType); err != nil {
				h.assets.Release(uris...)
				return nil, badRequest(ErrCodeUnsupportedType, "photo %s: unsupported content type %s",
					header.Filename, contentType)
			}
		}

		file, err := header.Open()
		if err != nil {
			h.assets.Release(uris...)
			return nil, fmt.Errorf("failed to open photo part %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			h.assets.Release(uris...)
			return nil, fmt.Errorf("failed to read photo part %s: %w", header.Filename, err)
		}

		uri := h.assets.Register(data)
		uris = append(uris, uri)
		draft.AddPhotos(observation.NewPhoto(uri, header.Filename, contentType))
	}
	return uris, nil
}

func parseActivity(raw string) (observation.Activity, bool) {
	for _, option := range observation.ActivityOptions {
		if string(option) == raw {
			return option, true
		}
	}
	return "", false
}

func parseAction(raw string) (observation.Action, error) {
	if raw == "" {
		return observation.ActionObserved, nil
	}
	for _, option := range observation.ActionOptions {
		if string(option) == raw {
			return option, nil
		}
	}
	return "", fmt.Errorf("unknown actionTaken %q", raw)
}

// ListResponse is the body for GET /observations.
type ListResponse struct {
	Observations []observation.Stored `json:"observations"`
}

// List handles GET /observations - returns the observer's submission
// history, newest sighting first.
func (h *ObservationHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stored, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		// A canceled request is not a server fault; just stop.
		if r.Context().Err() != nil {
			return
		}
		slog.ErrorContext(r.Context(), "failed to list observations", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load observations")
		return
	}

	if stored == nil {
		stored = []observation.Stored{}
	}
	writeJSON(w, r.Context(), http.StatusOK, ListResponse{Observations: stored})
}
