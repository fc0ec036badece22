// Package media generates header images and narrated audio for finished
// articles and stores the resulting assets.
package media

import "context"

// Imager turns a prompt into a hosted image URL.
type Imager interface {
	Image(ctx context.Context, prompt string) (string, error)
}

// Narrator turns text into an audio asset and returns its URL.
type Narrator interface {
	Narrate(ctx context.Context, key, text string) (string, error)
}

// Storage persists binary assets and returns a URL for them.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}
