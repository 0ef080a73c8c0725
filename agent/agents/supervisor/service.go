// Package supervisor wires planner, executor and synthesizer into one request pipeline.
package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	nodex "github.com/tanpawarit/supervisor-agent/agent/nodes"
	statex "github.com/tanpawarit/supervisor-agent/agent/state"
)

var ErrEmptyQuery = contractx.ErrEmptyQuery

type Config struct {
	HistoryLimit int
}

// Deps are the collaborators of one supervisor. History and TaskBoard are optional.
type Deps struct {
	Registry    func() (contractx.Registry, error)
	Planner     contractx.Planner
	Executor    contractx.Executor
	Synthesizer contractx.Synthesizer
	History     statex.ConversationLog
	TaskBoard   nodex.TaskLister
}

type Supervisor struct {
	deps         Deps
	historyLimit int

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

func New(deps Deps, cfg Config) (*Supervisor, error) {
	if deps.Registry == nil {
		return nil, errors.New("registry loader is required")
	}
	if deps.Planner == nil {
		return nil, errors.New("planner is required")
	}
	if deps.Executor == nil {
		return nil, errors.New("executor is required")
	}
	if deps.Synthesizer == nil {
		return nil, errors.New("synthesizer is required")
	}

	limit := cfg.HistoryLimit
	if limit < 0 {
		limit = 0
	}

	s := &Supervisor{
		deps:         deps,
		historyLimit: limit,
		now:          time.Now,
		newID:        uuid.NewString,
	}

	graphRunner, err := s.compileHandleQueryGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

func (s *Supervisor) HandleQuery(ctx context.Context, req contractx.QueryRequest) (contractx.QueryResponse, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{Request: req})
	if err != nil {
		return contractx.QueryResponse{}, err
	}
	return out.Response, nil
}

// Agents lists the catalog the next request would use.
func (s *Supervisor) Agents() ([]contractx.WorkerDescriptor, error) {
	reg, err := s.deps.Registry()
	if err != nil {
		return nil, err
	}
	return reg.List(), nil
}
