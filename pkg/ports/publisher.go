package ports

import "context"

// Publisher uploads rendered HTML for an external preview or hosting surface.
type Publisher interface {
	// Publish stores html under key and returns a URL (or location) for it.
	Publish(ctx context.Context, key string, html []byte) (string, error)
}
