package analyst

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
	promptx "github.com/tanpawarit/insurance-analyst/agent/prompt"
)

// toolRounds caps how many analytics calls one question may trigger.
// Each round costs a model step and a tool step, plus one closing
// model step to phrase the answer.
const toolRounds = 3

const maxStep = 2*toolRounds + 1

// Analyst drives the reason-and-act loop: the chat model decides when
// to call the analytics tool and phrases the final answer from its
// output.
type Analyst struct {
	agent *react.Agent
}

func New(ctx context.Context, chatModel model.ToolCallingChatModel, analyticsTool tool.BaseTool) (*Analyst, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if analyticsTool == nil {
		return nil, fmt.Errorf("%w: analytics tool is required", contractx.ErrValidation)
	}

	systemPrompt := promptx.LoadAnalyst()

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: []tool.BaseTool{analyticsTool},
		},
		MaxStep: maxStep,
		MessageModifier: func(ctx context.Context, input []*schema.Message) []*schema.Message {
			return append([]*schema.Message{schema.SystemMessage(systemPrompt)}, input...)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create analyst agent: %w", err)
	}

	return &Analyst{agent: agent}, nil
}

// Ask runs one question through the loop and returns the final answer.
func (a *Analyst) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", contractx.ErrValidation)
	}

	msg, err := a.agent.Generate(ctx, []*schema.Message{schema.UserMessage(question)})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	return strings.TrimSpace(msg.Content), nil
}
