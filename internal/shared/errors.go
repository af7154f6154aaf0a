package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authorization errors
	ErrAuthorization  = fmt.Errorf("authorization error")
	ErrNotAuthorized  = fmt.Errorf("user not authorized")
	ErrTokenExpired   = fmt.Errorf("access token expired")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")
	ErrTokenNotFound  = fmt.Errorf("token not found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrUpstream           = fmt.Errorf("upstream request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrStore              = fmt.Errorf("token store failure")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrMissingUserID = fmt.Errorf("user ID is missing")
	ErrInvalidAction = fmt.Errorf("invalid action")
)
