package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const maxTokens = 512

const (
	captionPrompt = "Describe this image in one short sentence. Reply with the description only."
	ocrPrompt     = "Transcribe all text visible in this image, including handwriting. " +
		"Reply with the transcription only. If there is no text, reply with an empty message."
)

// OpenAIEngine implements Engine on top of chat-completion vision prompts.
// Selected with INFERENCE_ENGINE=openai.
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

// NewOpenAIEngine creates an OpenAI-backed engine. An empty key is passed
// through and rejected by the service, matching the Hugging Face engine.
func NewOpenAIEngine(apiKey, model string) *OpenAIEngine {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIEngine{client: openai.NewClient(apiKey), model: model}
}

func (e *OpenAIEngine) Caption(ctx context.Context, image []byte) (string, error) {
	return e.complete(ctx, captionPrompt, image)
}

func (e *OpenAIEngine) ReadText(ctx context.Context, image []byte) (string, error) {
	return e.complete(ctx, ocrPrompt, image)
}

func (e *OpenAIEngine) complete(ctx context.Context, prompt string, image []byte) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		http.DetectContentType(image), base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
