package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnknownVenue    = errors.New("unknown venue")
	ErrInvalidWeights  = errors.New("strategy weights must sum to 1.0")
	ErrInvalidPair     = errors.New("invalid matched pair")
	ErrInvalidOpp      = errors.New("invalid opportunity")
	ErrContextDone     = errors.New("context cancelled")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthorized    = errors.New("unauthorized")
)
