package docsearch

import "github.com/kailas-cloud/docsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrTransport        = domain.ErrTransport
	ErrInvalidRequest   = domain.ErrInvalidRequest
	ErrNotFound         = domain.ErrNotFound
	ErrIndexUnavailable = domain.ErrIndexUnavailable
)
