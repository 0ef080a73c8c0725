package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/synthesizer.txt
	synthesizerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Planner     string
	Synthesizer string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Planner:     strings.TrimSpace(plannerRaw),
		Synthesizer: strings.TrimSpace(synthesizerRaw),
	}
}
