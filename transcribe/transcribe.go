// Package transcribe sends captured audio to a remote speech-transcription
// provider and optionally runs a text-cleanup pass over the result.
package transcribe

import (
	"context"
)

// Request carries everything one transcription round trip needs. Credentials
// are passed per call and never retained by a client.
type Request struct {
	MimeType string // e.g. "audio/wav"
	Model    string
	Language string // ISO 639-1 code, empty for auto-detect
	APIKey   string
	BaseURL  string // empty for the provider default
}

// Client performs one blocking transcription round trip. Implementations must
// return a *Error for every failure so callers can classify it.
type Client interface {
	// Name returns the provider identifier.
	Name() string

	// Transcribe sends the audio and returns the transcript text. An empty
	// APIKey fails locally with KindInvalidCredentials, without any network
	// call.
	Transcribe(ctx context.Context, audio []byte, req Request) (string, error)
}

// Registry holds the configured transcription providers.
type Registry struct {
	clients map[string]Client
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a client to the registry.
func (r *Registry) Register(c Client) {
	r.clients[c.Name()] = c
}

// Get returns a client by name, or nil.
func (r *Registry) Get(name string) Client {
	return r.clients[name]
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}
