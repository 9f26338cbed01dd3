package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
)

// Sentinel errors returned by SignatureStore implementations.
var (
	// ErrSignatureNotFound indicates the requested signature does not exist.
	ErrSignatureNotFound = errors.New("reviewer signature not found")

	// ErrSignatureAlreadyExists indicates a signature with the same account and marker exists.
	ErrSignatureAlreadyExists = errors.New("reviewer signature already exists")
)

// SignatureStore defines the driven port for managing reviewer signatures.
// Add returns ErrSignatureAlreadyExists for a duplicate account/marker pair.
// Remove returns ErrSignatureNotFound if the ID does not exist.
type SignatureStore interface {
	Add(ctx context.Context, sig model.ReviewerSignature) (model.ReviewerSignature, error)
	Remove(ctx context.Context, id int64) error
	// ListAll returns reviewer-b signatures first, then reviewer-a, each by ID.
	ListAll(ctx context.Context) ([]model.ReviewerSignature, error)
}
