package observation

import "strings"

// Validation error codes, one per rule in the submission gate.
const (
	CodeSignInRequired       = "sign_in_required"
	CodePhotosRequired       = "photos_required"
	CodeLocationRequired     = "location_required"
	CodeInvalidCount         = "invalid_count"
	CodeDetailMismatch       = "turtle_detail_mismatch"
	CodeActionDetailRequired = "action_detail_required"
)

// ValidationError names the first submission rule a draft failed. MessageKey
// resolves through the localized text catalog to the notification shown to
// the user.
type ValidationError struct {
	Code       string
	MessageKey string
}

func (e *ValidationError) Error() string {
	return e.Code
}

// Validate is the pre-submission gate: a pure check of the draft against the
// required-field and consistency rules, evaluated in a fixed order. It
// short-circuits on the first failing rule, since only one notification can
// be shown per attempt. A nil return means the draft may be submitted.
//
// Rule order: identity, photos, location text, count parse, detail/count
// match, action detail when the action is Other.
func (d *Draft) Validate(userID string) *ValidationError {
	if userID == "" {
		return &ValidationError{Code: CodeSignInRequired, MessageKey: "observations.alert.signIn"}
	}
	if len(d.Photos) == 0 {
		return &ValidationError{Code: CodePhotosRequired, MessageKey: "observations.alert.photos"}
	}
	if d.Latitude == "" || d.Longitude == "" {
		return &ValidationError{Code: CodeLocationRequired, MessageKey: "observations.alert.location"}
	}
	count := d.Count()
	if count <= 0 {
		return &ValidationError{Code: CodeInvalidCount, MessageKey: "observations.alert.count"}
	}
	// Guards against a race between rapid count edits and detail sync.
	if len(d.Details) != count {
		return &ValidationError{Code: CodeDetailMismatch, MessageKey: "observations.alert.turtleMismatch"}
	}
	if d.ActionTaken == ActionOther && strings.TrimSpace(d.ActionOther) == "" {
		return &ValidationError{Code: CodeActionDetailRequired, MessageKey: "observations.alert.actionOther"}
	}
	return nil
}
