package types

import "errors"

var (
	ErrInvalidRange       = errors.New("invalid date range: start is after end")
	ErrInvalidPeriod      = errors.New("unsupported period")
	ErrInvalidGranularity = errors.New("unsupported granularity")
	ErrNoProvidersFound   = errors.New("no cost providers found. Configure AWS CLI profiles or the backend API first")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrUnsupportedSource  = errors.New("unsupported cost data source")
	ErrViewClosed         = errors.New("detail view is closed")
)
