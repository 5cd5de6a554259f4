package conversation

import (
	"calmbot/app/config"
	"calmbot/app/sentiment"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/sashabaranov/go-openai"
)

//go:embed persona_prompt.txt
var personaPromptTemplate string

const maxGenerateDuration = 30 * time.Second

// completionService is the slice of the openai client the agent needs;
// narrowed for tests.
type completionService interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ReplyAgent is the generative-backend adapter. It assembles the persona
// prompt with the rolling context and degrades to the local sentiment
// template on any backend failure.
type ReplyAgent struct {
	client completionService
	model  string
}

func NewReplyAgent(cfg config.Backend) *ReplyAgent {
	return &ReplyAgent{
		client: createClient(cfg),
		model:  cfg.Model,
	}
}

var _ Generator = (*ReplyAgent)(nil)

// Generate never fails past this boundary: errors are logged and replaced by
// the sentiment fallback, which is a pure function of the message and does
// not call the backend again.
func (a *ReplyAgent) Generate(ctx context.Context, message, prevResponse, history string) string {
	reply, err := a.complete(ctx, message, prevResponse, history)
	if err != nil {
		slog.Error("Generative backend failed, falling back to sentiment reply", "error", err)
		return sentiment.FallbackReply(message)
	}

	return reply
}

func (a *ReplyAgent) complete(ctx context.Context, message, prevResponse, history string) (string, error) {
	if prevResponse == "" {
		prevResponse = "None"
	}

	templateValues := map[string]any{
		"history":       history,
		"prev_response": prevResponse,
		"message":       message,
	}

	prompt := personaPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	aiResponse, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: 500,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(aiResponse.Choices[0].Message.Content), nil
}
