package models

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrNotFound = status.Errorf(codes.NotFound, "not found")

// Failure kinds. Callers wrap them with context and test with errors.Is.
var (
	ErrTransport       = errors.New("transport failure")
	ErrUnauthorized    = errors.New("credentials rejected")
	ErrUpstreamStatus  = errors.New("unexpected upstream status")
	ErrMalformedReply  = errors.New("malformed product payload")
	ErrUnsupportedFile = errors.New("unsupported file")
	ErrNoCredentials   = errors.New("site credentials not configured")
	ErrNothingStaged   = errors.New("no staged products")
	ErrInvalidInput    = errors.New("invalid input")
)
