package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidAccessCode  ErrCode = "INVALID_ACCESS_CODE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Practice session ──────────────────────────────────────────────
	ErrSetupFailed      ErrCode = "SETUP_FAILED"
	ErrNoActiveSession  ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionActive    ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrNotSubmitted     ErrCode = "NOT_SUBMITTED"
	ErrIndexOutOfRange  ErrCode = "INDEX_OUT_OF_RANGE"
	ErrNotEnoughItems   ErrCode = "INSUFFICIENT_QUESTIONS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// Message returns a human-readable message for a given error code.
func Message(code ErrCode) string {
	switch code {
	case ErrInvalidAccessCode:
		return "The access code is incorrect."
	case ErrSessionInvalidated:
		return "Your login has expired. Please sign in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrAdminAccessOnly:
		return "This endpoint requires an admin key."
	case ErrValidation:
		return "One or more fields failed validation."
	case ErrInvalidID:
		return "The identifier in the URL is malformed."
	case ErrInvalidPayload:
		return "The request body could not be parsed."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrSetupFailed:
		return "Could not prepare your practice questions. Please try again."
	case ErrNoActiveSession:
		return "You have no practice session in progress."
	case ErrSessionActive:
		return "A practice session is already in progress. Submit it first."
	case ErrAlreadySubmitted:
		return "This practice session has already been submitted."
	case ErrNotSubmitted:
		return "Results are available only after submission."
	case ErrIndexOutOfRange:
		return "The question number is outside this paper."
	case ErrNotEnoughItems:
		return "The question bank does not have enough questions for this selection."
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."
	case ErrInternal:
		return "Something went wrong on our side."
	default:
		return "Unknown error."
	}
}
