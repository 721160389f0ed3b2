package dto

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("errRecordNotFound")
	ErrAlreadyExists = errors.New("errAlreadyExists")

	ErrConfigInactive          = errors.New("errIntegrationInactive")
	ErrUnsupportedOperation    = errors.New("errUnsupportedOperation")
	ErrUnsupportedWebhookEvent = errors.New("errUnsupportedWebhookEvent")
	ErrUnsupportedSystemType   = errors.New("errUnsupportedSystemType")
)
