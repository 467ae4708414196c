package ports

import "errors"

// Lookup failures shared by the app and its transports.
var (
	ErrUnknownSubject = errors.New("unknown subject")
	ErrPlanNotFound   = errors.New("plan not found")
)
