package supervisornode

import (
	"fmt"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

func LoadRegistry(in *GraphState, load func() (contractx.Registry, error)) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	reg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	in.Registry = reg
	return in, nil
}
