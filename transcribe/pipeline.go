package transcribe

import (
	"context"
	"fmt"
	"log/slog"

	"go.aimuz.me/murmur/internal/types"
	"go.aimuz.me/murmur/langdetect"
)

// Pipeline resolves the configured provider, runs the transcription round
// trip and the optional cleanup pass.
type Pipeline struct {
	registry *Registry

	// newCleaner is swappable in tests.
	newCleaner func(types.SpeechSettings) Cleaner
}

// NewPipeline creates a pipeline over the given provider registry.
func NewPipeline(registry *Registry) *Pipeline {
	return &Pipeline{
		registry:   registry,
		newCleaner: NewCleaner,
	}
}

// Transcribe performs one full transcription for a finished audio payload.
// A failed cleanup pass degrades to the raw transcript; it never fails the
// session.
func (p *Pipeline) Transcribe(ctx context.Context, audio []byte, st types.SpeechSettings) (types.Transcript, error) {
	client := p.registry.Get(st.Provider)
	if client == nil {
		return types.Transcript{}, fmt.Errorf("unknown transcription provider: %q", st.Provider)
	}

	raw, err := client.Transcribe(ctx, audio, Request{
		MimeType: "audio/wav",
		Model:    st.Model,
		Language: st.Language,
		APIKey:   st.APIKey,
		BaseURL:  st.BaseURL,
	})
	if err != nil {
		return types.Transcript{}, err
	}

	code, name := langdetect.Detect(raw)

	result := types.Transcript{Text: raw, Language: code}
	if !st.Cleanup {
		return result, nil
	}

	cleaned, err := p.newCleaner(st).Clean(ctx, raw, name)
	if err != nil {
		slog.Warn("cleanup pass failed, delivering raw transcript", "error", err)
		return result, nil
	}

	result.Text = cleaned
	result.Raw = raw
	return result, nil
}
