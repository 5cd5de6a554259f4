package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

type stubCompletion struct {
	reply    string
	err      error
	requests []openai.ChatCompletionRequest
}

func (s *stubCompletion) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

func TestGenerateAssemblesPrompt(t *testing.T) {
	stub := &stubCompletion{reply: "  You're stronger than you think.  "}
	agent := &ReplyAgent{client: stub, model: "test-model"}

	reply := agent.Generate(context.Background(), "I feel stuck", "try journaling", "User: hi | Bot: try journaling ")

	if reply != "You're stronger than you think." {
		t.Errorf("expected trimmed backend reply, got %q", reply)
	}

	if len(stub.requests) != 1 {
		t.Fatalf("expected one backend call, got %d", len(stub.requests))
	}
	prompt := stub.requests[0].Messages[0].Content
	for _, fragment := range []string{"I feel stuck", "try journaling", "User: hi"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
	if strings.Contains(prompt, "{message}") {
		t.Error("prompt placeholders must all be substituted")
	}
}

func TestGeneratePrevResponseAbsent(t *testing.T) {
	stub := &stubCompletion{reply: "ok"}
	agent := &ReplyAgent{client: stub, model: "test-model"}

	agent.Generate(context.Background(), "hello", "", "")

	if !strings.Contains(stub.requests[0].Messages[0].Content, "Previous bot response: None") {
		t.Error("absent previous reply must render as None")
	}
}

func TestGenerateFallsBackOnBackendFailure(t *testing.T) {
	stub := &stubCompletion{err: errors.New("quota exceeded")}
	agent := &ReplyAgent{client: stub, model: "test-model"}

	reply := agent.Generate(context.Background(), "I feel sad and alone", "", "")

	if !strings.Contains(reply, "negative") {
		t.Errorf("fallback must name the detected sentiment, got %q", reply)
	}

	// The fallback must not call the backend again.
	if len(stub.requests) != 1 {
		t.Errorf("expected exactly one backend call, got %d", len(stub.requests))
	}
}

func TestGenerateFallsBackOnEmptyChoices(t *testing.T) {
	agent := &ReplyAgent{client: &stubNoChoices{}, model: "test-model"}

	reply := agent.Generate(context.Background(), "xyzabc123", "", "")
	if !strings.Contains(reply, "neutral") {
		t.Errorf("expected neutral fallback for opaque input, got %q", reply)
	}
}

type stubNoChoices struct{}

func (s *stubNoChoices) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}
