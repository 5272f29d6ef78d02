package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"go.aimuz.me/murmur/internal/types"
)

// DefaultCleanupPrompt is used when the user has not customized the pass.
const DefaultCleanupPrompt = "You reformat raw dictation transcripts. " +
	"Fix punctuation and capitalization, remove filler words and false starts, " +
	"and render enumerations as lists. Preserve the speaker's wording and " +
	"language. Return only the cleaned text."

// Cleaner reformats a raw transcript into normalized prose or lists.
type Cleaner interface {
	Clean(ctx context.Context, transcript, language string) (string, error)
}

// openaiCleaner runs the cleanup pass through a chat-completion model.
type openaiCleaner struct {
	client      openai.Client
	model       string
	prompt      string
	maxTokens   int
	temperature float64
}

// NewCleaner creates a cleanup pass from the resolved settings snapshot.
func NewCleaner(st types.SpeechSettings) Cleaner {
	opts := []option.RequestOption{option.WithAPIKey(st.CleanupAPIKey)}
	if st.CleanupBaseURL != "" {
		opts = append(opts, option.WithBaseURL(st.CleanupBaseURL))
	}

	prompt := st.CleanupPrompt
	if prompt == "" {
		prompt = DefaultCleanupPrompt
	}
	maxTokens := st.CleanupTokens
	if maxTokens == 0 {
		maxTokens = types.DefaultCleanupMaxTokens
	}

	return &openaiCleaner{
		client:      openai.NewClient(opts...),
		model:       st.CleanupModel,
		prompt:      prompt,
		maxTokens:   maxTokens,
		temperature: st.CleanupTemp,
	}
}

func (c *openaiCleaner) Clean(ctx context.Context, transcript, language string) (string, error) {
	user := transcript
	if language != "" {
		user = fmt.Sprintf("Transcript language: %s\n\n%s", language, transcript)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.prompt),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("cleanup completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("cleanup completion: no choices")
	}

	cleaned := strings.TrimSpace(resp.Choices[0].Message.Content)
	if cleaned == "" {
		return "", fmt.Errorf("cleanup completion: empty text")
	}
	return cleaned, nil
}
