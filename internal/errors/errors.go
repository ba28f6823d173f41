package errors

import "errors"

// Sentinel errors for common failure modes.
var (
	ErrConnectionFailed    = errors.New("connection failed")
	ErrTimeout             = errors.New("request timed out")
	ErrServerRejected      = errors.New("server rejected request")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrSessionExpired      = errors.New("session expired")
	ErrNotSignedIn         = errors.New("not signed in")
	ErrMissingImageURL     = errors.New("no image URL returned")
	ErrGenerationInFlight  = errors.New("strip generation already in progress")
	ErrPurchaseUnavailable = errors.New("in-app purchase not available")
	ErrPurchaseCancelled   = errors.New("purchase cancelled")
)

// ValidationError represents a field validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// UserFacing is implemented by errors whose message is already safe to show
// to an end user.
type UserFacing interface {
	UserMessage() string
}

// StatusCarrier is implemented by errors that came back from the server with
// an HTTP status code.
type StatusCarrier interface {
	HTTPStatus() int
}

// UserMessage returns the displayable message for err, falling back to the
// classified message when err carries none.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uf UserFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	return ClassifyError(err).Message
}
