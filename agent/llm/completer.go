package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	openrouterx "github.com/tanpawarit/supervisor-agent/pkg/openrouter"
)

// Unavailable is the completer used when no model backend is configured.
type Unavailable struct{}

var _ contractx.Completer = Unavailable{}

func (Unavailable) Complete(context.Context, string, string) (string, error) {
	return "", contractx.ErrModelUnavailable
}

// GraphCompleter runs a prompt -> chat model eino graph.
type GraphCompleter struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Completer = (*GraphCompleter)(nil)

func NewGraphCompleter(ctx context.Context, chatModel einomodel.BaseChatModel, graphName string) (*GraphCompleter, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is nil", contractx.ErrModelUnavailable)
	}

	// Prompts are passed as variables so literal braces in them are not parsed as placeholders.
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add completion prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add completion model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add completion edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add completion edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add completion edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile completion graph: %w", err)
	}
	return &GraphCompleter{runner: runner}, nil
}

func (g *GraphCompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	msg, err := g.runner.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"input":  userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: empty model reply", contractx.ErrModelInvoke)
	}
	return msg.Content, nil
}

// ChatCompletionCompleter calls the chat completions endpoint directly through openai-go.
type ChatCompletionCompleter struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ contractx.Completer = (*ChatCompletionCompleter)(nil)

func NewChatCompletionCompleter(client *openai.Client, cfg openrouterx.Config) (*ChatCompletionCompleter, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is nil", contractx.ErrModelUnavailable)
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		return nil, fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	c := &ChatCompletionCompleter{
		client:      client,
		model:       modelName,
		temperature: float64(cfg.Temperature),
	}
	if cfg.MaxCompletionToken != nil {
		c.maxTokens = int64(*cfg.MaxCompletionToken)
	}
	return c, nil
}

func (c *ChatCompletionCompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", contractx.ErrModelInvoke)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty model reply", contractx.ErrModelInvoke)
	}
	return content, nil
}

// Completers bundles the planner and synthesizer backends.
type Completers struct {
	Planner     contractx.Completer
	Synthesizer contractx.Completer
}

// NewCompleters never fails: anything that cannot be built degrades to Unavailable.
func NewCompleters(ctx context.Context, cfg Config) Completers {
	out := Completers{Planner: Unavailable{}, Synthesizer: Unavailable{}}
	if !cfg.Enabled() {
		log.Info().Msg("llm api key not set, planner and synthesizer run without a model")
		return out
	}

	plannerCfg := cfg.OpenRouterFor(RolePlanner)
	chatModel, err := plannerCfg.NewChatModel(ctx)
	if err != nil {
		log.Error().Err(err).Str("model", plannerCfg.Model).Msg("planner chat model unavailable")
	} else if planner, err := NewGraphCompleter(ctx, chatModel, "supervisor.planner_completion"); err != nil {
		log.Error().Err(err).Msg("planner graph unavailable")
	} else {
		out.Planner = planner
	}

	synthCfg := cfg.OpenRouterFor(RoleSynthesizer)
	if synth, err := NewChatCompletionCompleter(openrouterx.NewClient(synthCfg), synthCfg); err != nil {
		log.Error().Err(err).Str("model", synthCfg.Model).Msg("synthesizer client unavailable")
	} else {
		out.Synthesizer = synth
	}

	return out
}
