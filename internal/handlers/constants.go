package handlers

const (
	ErrInvalidRequest        = "Invalid request body"
	ErrNoStudy               = "No active study"
	ErrStudyExpired          = "Study session expired"
	ErrInvalidCSRF           = "Invalid CSRF token"
	ErrUnauthorized          = "Unauthorized"
	ErrTooManyRequests       = "Too many requests"
	ErrInternalServerError   = "Internal server error"
	ErrNoData                = "No data to download"
	ErrStorageUnavailable    = "Progress storage is unavailable"
	ErrResearcherUnavailable = "Researcher access is not configured"
)
