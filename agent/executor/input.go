package executor

import (
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

const stepPrefix = "step:"

// ResolveInput maps an input_source to the text handed to a worker. A reference
// to a step that is missing, failed, or malformed resolves to the original query.
func ResolveInput(source string, query string, outcomes *contractx.Outcomes) string {
	source = strings.TrimSpace(source)
	if source == contractx.InputUserQuery {
		return query
	}
	stepID, ok := referencedStep(source)
	if !ok {
		return query
	}
	prior, ok := outcomes.Get(stepID)
	if !ok || !prior.Succeeded() {
		return query
	}
	return prior.ResultText()
}

// referencedStep parses "step:N" with an optional ".output.result" style suffix.
func referencedStep(source string) (int, bool) {
	rest, ok := strings.CutPrefix(source, stepPrefix)
	if !ok {
		return 0, false
	}
	if idx := strings.IndexByte(rest, '.'); idx >= 0 {
		rest = rest[:idx]
	}
	id, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return id, true
}
