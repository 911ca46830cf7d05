package domain

import "errors"

// None of these are fatal; each narrows what the caller can still do.
var (
	ErrEmptyQuery           = errors.New("empty query")
	ErrQueryTooLong         = errors.New("query too long")
	ErrNotFound             = errors.New("location not found")
	ErrInvalidTransform     = errors.New("invalid transform")
	ErrSpeechUnavailable    = errors.New("speech recognition unavailable")
	ErrSpeechDenied         = errors.New("speech recognition permission denied")
	ErrContainerUnavailable = errors.New("container size unavailable")
	ErrInvalidLocation      = errors.New("invalid location")
	ErrDuplicateLocation    = errors.New("duplicate location name")
)
