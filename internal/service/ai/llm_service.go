package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/twenty-questions/backend/internal/config"
	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
)

const transcriptKey = "transcript"

var errEmptyResponse = errors.New("model returned an empty response")

// Service asks the chat model for the next question or guess.
type Service struct {
	cfg   config.AIConfig
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a questioner backed by the configured Ark model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg)
}

// NewServiceWithModel compiles the questioner chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel, cfg config.AIConfig) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder(transcriptKey, false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile questioner chain: %w", err)
	}

	return &Service{
		cfg:   cfg,
		chain: runnable,
	}, nil
}

// Complete sends the whole transcript and returns the model's reply. Failures
// are returned as-is; retrying is up to the caller.
func (s *Service) Complete(ctx context.Context, messages []game.Message) (string, error) {
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}

	input := map[string]any{
		transcriptKey: buildTranscript(messages),
	}

	response, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(s.modelOptions()...))
	if err != nil {
		return "", fmt.Errorf("failed to run questioner chain: %w", err)
	}
	if response == nil {
		return "", errEmptyResponse
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return "", errEmptyResponse
	}

	log.Printf("[ai] generated reply, transcript=%d, length=%d", len(messages), len(content))
	return content, nil
}

func (s *Service) modelOptions() []model.Option {
	opts := []model.Option{
		model.WithTemperature(s.cfg.Temperature),
		model.WithMaxTokens(s.cfg.MaxTokens),
	}
	if s.cfg.TopP != nil {
		opts = append(opts, model.WithTopP(*s.cfg.TopP))
	}
	return opts
}

func buildTranscript(messages []game.Message) []*schema.Message {
	transcript := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case game.RoleSystem:
			transcript = append(transcript, schema.SystemMessage(msg.Text))
		case game.RoleQuestioner:
			transcript = append(transcript, schema.AssistantMessage(msg.Text, nil))
		case game.RoleAnswerer:
			transcript = append(transcript, schema.UserMessage(msg.Text))
		}
	}
	return transcript
}
