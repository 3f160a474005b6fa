package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrNotSignedIn  = fmt.Errorf("not signed in")
	ErrTokenExpired = fmt.Errorf("access token expired")

	// Gateway errors
	ErrAPIRequest    = fmt.Errorf("API request failed")
	ErrTransport     = fmt.Errorf("transport failure")
	ErrQuotaExceeded = fmt.Errorf("provider quota exceeded")

	// Stream resolution errors
	ErrInvalidID         = fmt.Errorf("invalid video id")
	ErrNoFormats         = fmt.Errorf("no formats returned")
	ErrNoPlayableFormat  = fmt.Errorf("no playable format")
	ErrItemNotFound      = fmt.Errorf("item not found")
	ErrSourceUnavailable = fmt.Errorf("source unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// AuthError represents a rejection from the identity provider, carrying the
// provider-defined string code (e.g. EMAIL_EXISTS, INVALID_PASSWORD).
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("auth error %s", e.Code)
}

func (e *AuthError) Unwrap() error { return ErrAuthFailed }

// NewAuthError builds an [AuthError] for a provider code, attaching the mapped
// user-facing message when one exists.
func NewAuthError(code string) *AuthError {
	return &AuthError{Code: code, Message: authMessages[code]}
}

// authMessages maps provider error codes to human-readable messages shown to the user.
var authMessages = map[string]string{
	"EMAIL_EXISTS":                "That email address is already in use.",
	"INVALID_EMAIL":               "That email address is invalid.",
	"EMAIL_NOT_FOUND":             "No account found for that email address.",
	"INVALID_PASSWORD":            "Incorrect password.",
	"INVALID_LOGIN_CREDENTIALS":   "Incorrect email or password.",
	"WEAK_PASSWORD":               "Password is too weak. Use at least 6 characters.",
	"USER_DISABLED":               "This account has been disabled.",
	"NETWORK_ERROR":               "Network request failed. Check your connection.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts. Try again later.",
}

// AuthMessage returns a user-facing message for a provider error code.
func AuthMessage(code string) string {
	if msg, ok := authMessages[code]; ok {
		return msg
	}
	return "Authentication failed. Please try again."
}
