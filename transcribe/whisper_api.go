package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultWhisperAPIURL = "https://api.openai.com/v1/audio/transcriptions"

// WhisperAPI implements Client against OpenAI's transcription endpoint
// (multipart file upload, JSON response with a "text" field).
type WhisperAPI struct {
	http *http.Client
}

// NewWhisperAPI creates a Whisper API client.
func NewWhisperAPI() *WhisperAPI {
	return &WhisperAPI{
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

func (w *WhisperAPI) Name() string { return "whisper-api" }

// Transcribe uploads the audio as a multipart form and extracts the text.
func (w *WhisperAPI) Transcribe(ctx context.Context, audio []byte, req Request) (string, error) {
	if req.APIKey == "" {
		return "", newError(KindInvalidCredentials, "API key is empty")
	}

	model := req.Model
	if model == "" {
		model = "whisper-1"
	}
	url := req.BaseURL
	if url == "" {
		url = defaultWhisperAPIURL
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", wrapError(KindInvalidResponse, fmt.Errorf("create form file: %w", err))
	}
	if _, err := part.Write(audio); err != nil {
		return "", wrapError(KindInvalidResponse, fmt.Errorf("write audio data: %w", err))
	}
	if err := writer.WriteField("model", model); err != nil {
		return "", wrapError(KindInvalidResponse, fmt.Errorf("write model field: %w", err))
	}
	// The API rejects "auto"; an absent field means auto-detect.
	if req.Language != "" && req.Language != "auto" {
		if err := writer.WriteField("language", req.Language); err != nil {
			return "", wrapError(KindInvalidResponse, fmt.Errorf("write language field: %w", err))
		}
	}
	if err := writer.Close(); err != nil {
		return "", wrapError(KindInvalidResponse, fmt.Errorf("close multipart writer: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", wrapError(KindNetwork, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := w.http.Do(httpReq)
	if err != nil {
		return "", wrapError(KindNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapError(KindNetwork, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyHTTPError(resp.StatusCode, body)
	}

	var apiResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", wrapError(KindInvalidResponse, fmt.Errorf("parse response: %w", err))
	}
	if apiResp.Text == "" {
		return "", newError(KindEmptyResult, "response contained no text")
	}
	return apiResp.Text, nil
}

// classifyHTTPError distinguishes a structured provider error payload from a
// bare non-2xx status.
func classifyHTTPError(status int, body []byte) *Error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return &Error{Kind: KindAPI, Status: status, Message: payload.Error.Message}
	}
	return &Error{Kind: KindHTTP, Status: status, Message: http.StatusText(status)}
}
