package transcribe

import (
	"context"
	"errors"
	"testing"

	"go.aimuz.me/murmur/internal/types"
)

type stubClient struct {
	name string
	text string
	err  error
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Transcribe(_ context.Context, _ []byte, _ Request) (string, error) {
	return s.text, s.err
}

type stubCleaner struct {
	text string
	err  error
}

func (s *stubCleaner) Clean(_ context.Context, _, _ string) (string, error) {
	return s.text, s.err
}

func newTestPipeline(client Client, cleaner Cleaner) *Pipeline {
	reg := NewRegistry()
	reg.Register(client)
	p := NewPipeline(reg)
	p.newCleaner = func(types.SpeechSettings) Cleaner { return cleaner }
	return p
}

func TestPipelineCleanupDisabled(t *testing.T) {
	p := newTestPipeline(
		&stubClient{name: "whisper-api", text: "raw words here"},
		&stubCleaner{text: "SHOULD NOT BE USED"},
	)

	result, err := p.Transcribe(context.Background(), []byte("a"), types.SpeechSettings{
		Provider: "whisper-api",
		APIKey:   "k",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "raw words here" || result.Raw != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestPipelineCleanupApplied(t *testing.T) {
	p := newTestPipeline(
		&stubClient{name: "whisper-api", text: "uh so the raw transcript"},
		&stubCleaner{text: "The raw transcript."},
	)

	result, err := p.Transcribe(context.Background(), []byte("a"), types.SpeechSettings{
		Provider: "whisper-api",
		APIKey:   "k",
		Cleanup:  true,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "The raw transcript." {
		t.Fatalf("text = %q", result.Text)
	}
	if result.Raw != "uh so the raw transcript" {
		t.Fatalf("raw = %q", result.Raw)
	}
}

// A failed cleanup pass degrades to the raw transcript. This is a hard
// contract, not an implementation detail.
func TestPipelineCleanupFailureDegradesToRaw(t *testing.T) {
	p := newTestPipeline(
		&stubClient{name: "whisper-api", text: "the raw transcript"},
		&stubCleaner{err: errors.New("model overloaded")},
	)

	result, err := p.Transcribe(context.Background(), []byte("a"), types.SpeechSettings{
		Provider: "whisper-api",
		APIKey:   "k",
		Cleanup:  true,
	})
	if err != nil {
		t.Fatalf("expected degraded success, got error: %v", err)
	}
	if result.Text != "the raw transcript" {
		t.Fatalf("text = %q, want the raw transcript", result.Text)
	}
}

func TestPipelineTranscriptionFailurePropagates(t *testing.T) {
	p := newTestPipeline(
		&stubClient{name: "whisper-api", err: &Error{Kind: KindAPI, Status: 401, Message: "bad key"}},
		&stubCleaner{},
	)

	_, err := p.Transcribe(context.Background(), []byte("a"), types.SpeechSettings{
		Provider: "whisper-api",
		APIKey:   "k",
	})

	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindAPI {
		t.Fatalf("expected KindAPI, got %v", err)
	}
}

func TestPipelineUnknownProvider(t *testing.T) {
	p := NewPipeline(NewRegistry())

	_, err := p.Transcribe(context.Background(), []byte("a"), types.SpeechSettings{Provider: "nope"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
