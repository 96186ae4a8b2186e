package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned by Load (and optionally Delete) for unknown ids.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore persists serialized documents. The store treats the bytes as
// opaque; the engine owns their format.
type DocumentStore interface {
	// Save writes the document, replacing any previous version.
	Save(ctx context.Context, docID string, data []byte) error

	// Load returns the stored bytes.
	// Returns ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, docID string) ([]byte, error)

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, docID string) error

	// List returns the ids of all stored documents.
	List(ctx context.Context) ([]string, error)
}

// ErrInvalidDocumentID is returned for ids that cannot name a document.
var ErrInvalidDocumentID = errors.New("invalid document id")

// ValidateDocumentID accepts non-empty ids made of letters, digits, '-', '_'
// and '.', not starting with '.'. Every store keys files or records by this id.
func ValidateDocumentID(id string) error {
	if id == "" || len(id) > 128 || id[0] == '.' {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
		}
	}
	return nil
}
