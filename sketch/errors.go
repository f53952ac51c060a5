package sketch

import "errors"

var (
	ErrUnsupportedPayload = errors.New("unsupported vector data structure")
	ErrSessionActive      = errors.New("a drawing session is already active")
	ErrTooFewPoints       = errors.New("polygon needs at least 3 distinct points")
	ErrUnknownEntry       = errors.New("feature entry not found")
	ErrUnknownIcon        = errors.New("unknown icon")
	ErrEditorClosed       = errors.New("no feature is being edited")
	ErrInvalidDatasetID   = errors.New("invalid dataset id")
	ErrInvalidMode        = errors.New("invalid drawing mode")
)
