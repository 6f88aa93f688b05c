package imaging

import "github.com/pkg/errors"

var (
	// ErrUnknownSourceType marks object data whose type tag is absent or
	// not one of the known source kinds.
	ErrUnknownSourceType = errors.New("unknown source type")

	// ErrNoCompatibleService marks a descriptor whose image service
	// candidates are all of unsupported types.
	ErrNoCompatibleService = errors.New("no compatible image service")

	// ErrUpstreamUnavailable marks a network failure or timeout talking
	// to an image service. Callers may retry; this package never does.
	ErrUpstreamUnavailable = errors.New("upstream image service unavailable")

	// ErrInvalidServiceResponse marks a malformed size-description
	// document. Treated like ErrUpstreamUnavailable for retry purposes.
	ErrInvalidServiceResponse = errors.New("invalid image service response")
)
