package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Gradings ──────────────────────────────────────────────────────
	ErrGradingNotFound     ErrCode = "GRADING_NOT_FOUND"
	ErrGradingNotPending   ErrCode = "GRADING_NOT_PENDING"
	ErrMissingItemScore    ErrCode = "MISSING_ITEM_SCORE"
	ErrInvalidItemScore    ErrCode = "INVALID_ITEM_SCORE"
	ErrUnexpectedItemScore ErrCode = "UNEXPECTED_ITEM_SCORE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "The token does not grant access to this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check the request."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Gradings ──────────────────────────────────────────────────────
	case ErrGradingNotFound:
		return "Grading not found."
	case ErrGradingNotPending:
		return "Grading is not waiting for manual review."
	case ErrMissingItemScore:
		return "A score is required for every answered essay."
	case ErrInvalidItemScore:
		return "Item scores must be between 0 and 1."
	case ErrUnexpectedItemScore:
		return "Scores can only be given to essays awaiting review."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
