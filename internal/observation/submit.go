package observation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync/atomic"
	"time"
)

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission of the same draft has not finished. At most one submission per
// draft may be in flight; the guard is a busy flag, not a queue.
var ErrSubmissionInFlight = errors.New("a submission for this draft is already in flight")

// UploadError reports a failed photo upload. It aborts the remaining
// submission sequence; photos already uploaded during the attempt are kept
// (paths are timestamp-keyed, so a retry writes fresh objects).
type UploadError struct {
	Index int
	Path  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload photo %d to %s: %v", e.Index, e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// InsertError reports a failed row insert after all uploads succeeded.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert observation rows: %v", e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// ObjectStore is the object-storage collaborator. Put must refuse to
// replace an existing key rather than silently overwrite it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PublicURL(key string) string
}

// AssetReader resolves a photo URI to its bytes at submission time.
type AssetReader interface {
	ReadAsset(ctx context.Context, uri string) ([]byte, error)
}

// Repository is the relational-store collaborator for observation rows.
type Repository interface {
	// InsertBatch persists all rows in a single transaction: either every
	// row is stored or none are.
	InsertBatch(ctx context.Context, rows []Row) error

	// ListByUser returns a user's stored observations, most recent
	// sighting first.
	ListByUser(ctx context.Context, userID string) ([]Stored, error)
}

// SubmitResult summarizes a fully successful submission.
type SubmitResult struct {
	PhotoURLs    []string
	RowsInserted int
}

// Submitter performs the network side of the workflow: sequential photo
// uploads followed by one batched row insert. The upload order contract is
// deliberate: photos go up strictly one at a time in draft order, so a
// failure short-circuits immediately and the collected URL list always
// matches capture order. Reimplementations must preserve both guarantees.
type Submitter struct {
	store   ObjectStore
	repo    Repository
	assets  AssetReader
	labeler OrdinalLabeler
	logger  *slog.Logger
	metrics *Metrics
	timeNow func() time.Time // For testability

	busy atomic.Bool
}

// SubmitterConfig wires a Submitter's collaborators. Store, Repo, and Assets
// are required; the rest default sensibly.
type SubmitterConfig struct {
	Store   ObjectStore
	Repo    Repository
	Assets  AssetReader
	Labeler OrdinalLabeler
	Logger  *slog.Logger
	Metrics *Metrics
	TimeNow func() time.Time
}

// NewSubmitter creates a Submitter from the given configuration.
func NewSubmitter(cfg SubmitterConfig) (*Submitter, error) {
	if cfg.Store == nil {
		return nil, errors.New("object store is required")
	}
	if cfg.Repo == nil {
		return nil, errors.New("repository is required")
	}
	if cfg.Assets == nil {
		return nil, errors.New("asset reader is required")
	}
	if cfg.Labeler == nil {
		cfg.Labeler = DefaultOrdinalLabel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}
	return &Submitter{
		store:   cfg.Store,
		repo:    cfg.Repo,
		assets:  cfg.Assets,
		labeler: cfg.Labeler,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		timeNow: cfg.TimeNow,
	}, nil
}

// Submit runs the validation gate and, if it passes, uploads every photo and
// inserts one row per turtle detail. On any failure the draft is left exactly
// as it was so the user can correct and resubmit; nothing is retried and
// already-uploaded objects from the failed attempt are not rolled back. On
// full success the draft is reset to its initial empty state.
func (s *Submitter) Submit(ctx context.Context, userID string, draft *Draft) (*SubmitResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.busy.Store(false)

	start := s.timeNow()

	if verr := draft.Validate(userID); verr != nil {
		s.metrics.recordSubmission(OutcomeValidationRejected, s.timeNow().Sub(start))
		return nil, verr
	}

	// Coordinates must parse before any network side effect happens.
	rows, err := BuildRows(draft, userID, nil, s.labeler)
	if err != nil {
		s.metrics.recordSubmission(OutcomeValidationRejected, s.timeNow().Sub(start))
		return nil, &ValidationError{Code: CodeLocationRequired, MessageKey: "observations.alert.location"}
	}

	photoURLs, err := s.uploadPhotos(ctx, userID, draft.Photos)
	if err != nil {
		s.metrics.recordSubmission(OutcomeUploadFailed, s.timeNow().Sub(start))
		return nil, err
	}

	for i := range rows {
		rows[i].PhotoURLs = photoURLs
	}

	if err := s.repo.InsertBatch(ctx, rows); err != nil {
		s.logger.Error("observation insert failed",
			slog.String("user_id", userID),
			slog.Int("rows", len(rows)),
			slog.String("error", err.Error()))
		s.metrics.recordSubmission(OutcomeInsertFailed, s.timeNow().Sub(start))
		return nil, &InsertError{Err: err}
	}

	s.logger.Info("observation submitted",
		slog.String("user_id", userID),
		slog.Int("photos", len(photoURLs)),
		slog.Int("turtles", len(rows)))
	s.metrics.recordSubmission(OutcomeSuccess, s.timeNow().Sub(start))
	s.metrics.recordCounts(len(photoURLs), len(rows))

	draft.Reset(s.timeNow())

	return &SubmitResult{PhotoURLs: photoURLs, RowsInserted: len(rows)}, nil
}

// uploadPhotos uploads each photo strictly sequentially in draft order and
// collects the resulting public URLs. The first failure aborts; remaining
// photos are not attempted.
func (s *Submitter) uploadPhotos(ctx context.Context, userID string, photos []Photo) ([]string, error) {
	urls := make([]string, 0, len(photos))
	for i, photo := range photos {
		body, err := s.assets.ReadAsset(ctx, photo.URI)
		if err != nil {
			return nil, &UploadError{Index: i, Path: photo.URI, Err: err}
		}

		key := fmt.Sprintf("%s/%d_%d.%s", userID, s.timeNow().UnixMilli(), i, photoExtension(photo))
		contentType := photo.MIMEType
		if contentType == "" {
			contentType = "image/jpeg"
		}

		if err := s.store.Put(ctx, key, body, contentType); err != nil {
			s.logger.Error("photo upload failed",
				slog.String("user_id", userID),
				slog.String("key", key),
				slog.Int("index", i),
				slog.String("error", err.Error()))
			return nil, &UploadError{Index: i, Path: key, Err: err}
		}

		urls = append(urls, s.store.PublicURL(key))
	}
	return urls, nil
}

// photoExtension derives the storage-path extension from the photo's MIME
// subtype, then its filename, then falls back to jpg.
func photoExtension(p Photo) string {
	if i := strings.LastIndex(p.MIMEType, "/"); i >= 0 && i+1 < len(p.MIMEType) {
		return p.MIMEType[i+1:]
	}
	if ext := strings.TrimPrefix(path.Ext(p.Filename), "."); ext != "" {
		return ext
	}
	return "jpg"
}
