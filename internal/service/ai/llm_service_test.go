package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/twenty-questions/backend/internal/config"
	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
)

type fakeChatModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	block    bool
	received []*schema.Message
	options  *model.Options
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	f.received = input
	f.options = model.GetCommonOptions(&model.Options{}, opts...)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func testConfig() config.AIConfig {
	return config.AIConfig{Temperature: 0.7, MaxTokens: 150}
}

func newTestService(t *testing.T, fake *fakeChatModel, cfg config.AIConfig) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(context.Background(), fake, cfg)
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}
	return svc
}

func TestCompleteSendsTranscriptInOrder(t *testing.T) {
	fake := &fakeChatModel{reply: "  Is it an animal?\n"}
	svc := newTestService(t, fake, testConfig())

	transcript := []game.Message{
		{Role: game.RoleSystem, Text: "rules"},
		{Role: game.RoleQuestioner, Text: "ready"},
		{Role: game.RoleQuestioner, Text: "Is it alive?"},
		{Role: game.RoleAnswerer, Text: "Yes"},
	}

	reply, err := svc.Complete(context.Background(), transcript)
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply != "Is it an animal?" {
		t.Fatalf("expected trimmed reply, got %q", reply)
	}

	wantRoles := []schema.RoleType{schema.System, schema.Assistant, schema.Assistant, schema.User}
	if len(fake.received) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(fake.received))
	}
	for i, role := range wantRoles {
		if fake.received[i].Role != role {
			t.Fatalf("message %d: expected role %s, got %s", i, role, fake.received[i].Role)
		}
		if fake.received[i].Content != transcript[i].Text {
			t.Fatalf("message %d: expected %q, got %q", i, transcript[i].Text, fake.received[i].Content)
		}
	}
}

func TestCompletePassesSamplingOptions(t *testing.T) {
	fake := &fakeChatModel{reply: "Does it fly?"}
	cfg := testConfig()
	topP := float32(0.8)
	cfg.TopP = &topP
	svc := newTestService(t, fake, cfg)

	if _, err := svc.Complete(context.Background(), []game.Message{{Role: game.RoleSystem, Text: "rules"}}); err != nil {
		t.Fatalf("Complete err: %v", err)
	}

	opts := fake.options
	if opts.Temperature == nil || *opts.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", opts.Temperature)
	}
	if opts.MaxTokens == nil || *opts.MaxTokens != 150 {
		t.Fatalf("expected 150 max tokens, got %v", opts.MaxTokens)
	}
	if opts.TopP == nil || *opts.TopP != 0.8 {
		t.Fatalf("expected top_p 0.8, got %v", opts.TopP)
	}
}

func TestCompleteReturnsModelError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("401 unauthorized")}
	svc := newTestService(t, fake, testConfig())

	if _, err := svc.Complete(context.Background(), []game.Message{{Role: game.RoleSystem, Text: "rules"}}); err == nil {
		t.Fatal("expected error from failing model")
	}
}

func TestCompleteRejectsEmptyReply(t *testing.T) {
	fake := &fakeChatModel{reply: "   "}
	svc := newTestService(t, fake, testConfig())

	if _, err := svc.Complete(context.Background(), []game.Message{{Role: game.RoleSystem, Text: "rules"}}); !errors.Is(err, errEmptyResponse) {
		t.Fatalf("expected errEmptyResponse, got %v", err)
	}
}

func TestCompleteHonoursCallTimeout(t *testing.T) {
	fake := &fakeChatModel{block: true}
	cfg := testConfig()
	cfg.CallTimeout = 20 * time.Millisecond
	svc := newTestService(t, fake, cfg)

	start := time.Now()
	if _, err := svc.Complete(context.Background(), []game.Message{{Role: game.RoleSystem, Text: "rules"}}); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not applied, call took %s", elapsed)
	}
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	if _, err := NewService(context.Background(), config.AIConfig{}); err == nil {
		t.Fatal("expected error without credentials")
	}
}
