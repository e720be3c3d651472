package autherr

// Kind identifies one failure class of the authentication and recovery
// surface. Handlers map kinds to HTTP status codes; services return them so
// call sites can switch on every case explicitly.
type Kind string

const (
	KindUnknown Kind = "UNKNOWN"

	// Authentication gate.
	KindNoAccessToken         Kind = "NO_ACCESS_TOKEN"
	KindAccessTokenInvalid    Kind = "ACCESS_TOKEN_INVALID"
	KindTokenExpiredNoRefresh Kind = "TOKEN_EXPIRED_NO_REFRESH"
	KindRefreshTokenInvalid   Kind = "REFRESH_TOKEN_INVALID"
	KindSessionInvalid        Kind = "SESSION_INVALID"

	// Authorization post-conditions.
	KindAdminRequired           Kind = "ADMIN_REQUIRED"
	KindInsufficientPermissions Kind = "INSUFFICIENT_PERMISSIONS"

	// Accounts.
	KindUserNotFound    Kind = "USER_NOT_FOUND"
	KindEmailRegistered Kind = "EMAIL_ALREADY_REGISTERED"
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindLoginFailed     Kind = "LOGIN_FAILED"

	// Security-question recovery.
	KindKeysNotFound      Kind = "KEYS_NOT_FOUND"
	KindAlreadyEnrolled   Kind = "ALREADY_ENROLLED"
	KindInvalidQuestionID Kind = "INVALID_QUESTION_ID"
	KindAnswerMismatch    Kind = "ANSWER_MISMATCH"
	KindSignatureMismatch Kind = "SIGNATURE_MISMATCH"

	// Configuration.
	KindInvalidDurationFormat Kind = "INVALID_DURATION_FORMAT"

	// Opaque bucket for storage and crypto faults.
	KindInternal Kind = "INTERNAL"
)
