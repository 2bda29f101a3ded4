package domain

import "errors"

var (
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrSessionExpired = errors.New("usage session expired")
)
