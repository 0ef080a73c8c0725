package contract

import "context"

type Registry interface {
	List() []WorkerDescriptor
	Find(name string) (WorkerDescriptor, error)
}

type Planner interface {
	Plan(ctx context.Context, req PlanRequest) Plan
}

type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) ExecuteResult
}

type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) string
}

// WorkerCaller performs one handshake. It never fails: transport problems come back as error outcomes.
type WorkerCaller interface {
	Call(ctx context.Context, worker WorkerDescriptor, req HandshakeRequest) CallOutcome
}

// Completer is a single-shot chat completion against some language model backend.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
