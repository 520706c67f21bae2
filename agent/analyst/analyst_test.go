package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	inputs    [][]*schema.Message
	idx       int
	err       error
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type stubAnalyticsTool struct {
	questions []string
	report    string
}

func (s *stubAnalyticsTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "insurance_analytics",
		Desc: "Query insurance database",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"question": {Type: schema.String, Required: true},
		}),
	}, nil
}

func (s *stubAnalyticsTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", err
	}
	s.questions = append(s.questions, input.Question)
	return s.report, nil
}

func toolCallMessage(question string) *schema.Message {
	args, _ := json.Marshal(map[string]string{"question": question})
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID:   "call-1",
				Type: "function",
				Function: schema.FunctionCall{
					Name:      "insurance_analytics",
					Arguments: string(args),
				},
			},
		},
	}
}

func TestAskRunsToolThenAnswers(t *testing.T) {
	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage("How many customers do we have?"),
			{Role: schema.Assistant, Content: "There are 1,000 customers in the portfolio."},
		},
	}
	stub := &stubAnalyticsTool{report: "Query: How many customers do we have?\n\nResults:\n1,000"}

	analyst, err := New(context.Background(), fake, stub)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	answer, err := analyst.Ask(context.Background(), "How many customers do we have?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if answer != "There are 1,000 customers in the portfolio." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if len(stub.questions) != 1 || stub.questions[0] != "How many customers do we have?" {
		t.Fatalf("tool questions = %v", stub.questions)
	}
}

func TestAskPrependsSystemPrompt(t *testing.T) {
	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: "done"},
		},
	}

	analyst, err := New(context.Background(), fake, &stubAnalyticsTool{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := analyst.Ask(context.Background(), "hello"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if len(fake.inputs) == 0 {
		t.Fatal("model was never invoked")
	}
	first := fake.inputs[0]
	if len(first) < 2 {
		t.Fatalf("expected system prompt plus user message, got %d messages", len(first))
	}
	if first[0].Role != schema.System {
		t.Fatalf("first message role = %v, want system", first[0].Role)
	}
	if !strings.Contains(first[0].Content, "insurance data analyst") {
		t.Fatalf("system prompt missing persona: %q", first[0].Content)
	}
	if first[len(first)-1].Content != "hello" {
		t.Fatalf("last message should carry the question: %q", first[len(first)-1].Content)
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Role: schema.Assistant, Content: "unused"}},
	}

	analyst, err := New(context.Background(), fake, &stubAnalyticsTool{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := analyst.Ask(context.Background(), "   "); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAskWrapsModelFailure(t *testing.T) {
	fake := &fakeToolCallingModel{err: errors.New("deployment throttled")}

	analyst, err := New(context.Background(), fake, &stubAnalyticsTool{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = analyst.Ask(context.Background(), "How many customers?")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
	if !strings.Contains(err.Error(), "deployment throttled") {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	if _, err := New(context.Background(), nil, &stubAnalyticsTool{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for nil model, got %v", err)
	}
	if _, err := New(context.Background(), &fakeToolCallingModel{}, nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for nil tool, got %v", err)
	}
}
