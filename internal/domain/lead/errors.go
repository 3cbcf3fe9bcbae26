package lead

import "errors"

var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrDuplicateToken = errors.New("access token already in use")
	ErrHoneypot       = errors.New("honeypot field filled")
)
