package main

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	supervisorx "github.com/tanpawarit/supervisor-agent/agent/agents/supervisor"
	executorx "github.com/tanpawarit/supervisor-agent/agent/executor"
	llmx "github.com/tanpawarit/supervisor-agent/agent/llm"
	plannerx "github.com/tanpawarit/supervisor-agent/agent/planner"
	promptx "github.com/tanpawarit/supervisor-agent/agent/prompt"
	registryx "github.com/tanpawarit/supervisor-agent/agent/registry"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
	synthesizerx "github.com/tanpawarit/supervisor-agent/agent/synthesizer"
	"github.com/tanpawarit/supervisor-agent/agent/taskboard"
	"github.com/tanpawarit/supervisor-agent/agent/transport"
	configx "github.com/tanpawarit/supervisor-agent/pkg/config"
)

type AppConfig struct {
	HTTPAddr     string `envconfig:"HTTP_ADDR" split_words:"true" default:":8000"`
	TaskboardURL string `envconfig:"TASKBOARD_URL" split_words:"true"`
}

type app struct {
	cfg        *AppConfig
	supervisor *supervisorx.Supervisor
	board      *taskboard.Client
	closers    []io.Closer
}

func buildApp(ctx context.Context) (*app, error) {
	appCfg, err := configx.New[AppConfig]("")
	if err != nil {
		return nil, err
	}
	registryCfg, err := configx.New[registryx.Config]("REGISTRY")
	if err != nil {
		return nil, err
	}
	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return nil, err
	}
	historyCfg, err := configx.New[statex.Config]("HISTORY")
	if err != nil {
		return nil, err
	}

	loader := registryx.NewLoader(*registryCfg)
	catalog, err := loader()
	if err != nil {
		return nil, err
	}
	log.Info().Int("agents", len(catalog.List())).Msg("agent registry loaded")

	if !llmCfg.Enabled() {
		log.Warn().Msg("OPENROUTER_API_KEY not set, planning falls back to rules and answers are stitched")
	}
	completers := llmx.NewCompleters(ctx, *llmCfg)
	prompts := promptx.LoadPromptSet()

	exec, err := executorx.New(transport.NewHTTPCaller())
	if err != nil {
		return nil, err
	}

	history, err := statex.Open(ctx, *historyCfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: appCfg}
	if c, ok := history.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	deps := supervisorx.Deps{
		Registry:    loader.Load,
		Planner:     plannerx.New(completers.Planner, prompts.Planner),
		Executor:    exec,
		Synthesizer: synthesizerx.New(completers.Synthesizer, prompts.Synthesizer),
		History:     history,
	}
	if url := strings.TrimSpace(appCfg.TaskboardURL); url != "" {
		board, err := taskboard.NewClient(url)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.board = board
		deps.TaskBoard = board
	}

	sup, err := supervisorx.New(deps, supervisorx.Config{HistoryLimit: historyCfg.Limit})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.supervisor = sup
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}
