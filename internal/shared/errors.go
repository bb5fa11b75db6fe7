package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing catalog API key")

	// Session errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrAccountExists      = fmt.Errorf("email already in use")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrForbidden          = fmt.Errorf("not allowed")

	// Catalog errors
	ErrNotFound           = fmt.Errorf("not found")
	ErrUpstream           = fmt.Errorf("catalog request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrInvalidName     = fmt.Errorf("%w: name is required", ErrValidation)
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
