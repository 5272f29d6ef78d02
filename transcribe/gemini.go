package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

const geminiTranscribePrompt = "Transcribe this audio recording verbatim. " +
	"Return only the spoken words, with sentence punctuation, and nothing else."

// Gemini implements Client against the Gemini generateContent endpoint
// (JSON request with base64 inline audio, JSON envelope response).
type Gemini struct {
	http *http.Client
}

// NewGemini creates a Gemini transcription client.
func NewGemini() *Gemini {
	return &Gemini{
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *Gemini) Name() string { return "gemini" }

// Gemini request/response types
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiBlobData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transcribe sends the audio inline and extracts the candidate text.
func (g *Gemini) Transcribe(ctx context.Context, audio []byte, req Request) (string, error) {
	if req.APIKey == "" {
		return "", newError(KindInvalidCredentials, "API key is empty")
	}

	model := req.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", baseURL, model, req.APIKey)

	prompt := geminiTranscribePrompt
	if req.Language != "" && req.Language != "auto" {
		prompt += " The audio is in language code " + req.Language + "."
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{InlineData: &geminiBlobData{
					MimeType: req.MimeType,
					Data:     base64.StdEncoding.EncodeToString(audio),
				}},
				{Text: prompt},
			},
		}},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", wrapError(KindInvalidResponse, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", wrapError(KindNetwork, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", wrapError(KindNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapError(KindNetwork, fmt.Errorf("read response: %w", err))
	}

	var envelope geminiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", &Error{Kind: KindHTTP, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return "", wrapError(KindInvalidResponse, fmt.Errorf("parse response: %w", err))
	}

	if envelope.Error != nil {
		return "", &Error{Kind: KindAPI, Status: resp.StatusCode, Message: envelope.Error.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Kind: KindHTTP, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var sb strings.Builder
	for _, cand := range envelope.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break // only the first candidate
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", newError(KindEmptyResult, "response contained no text")
	}
	return text, nil
}
