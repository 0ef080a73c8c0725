package taskboard

import (
	"sort"
	"strings"
)

const NoNamesResolved = "No task names could be resolved for dependencies."

// HumanizeDependencies rewrites a dependency-resolution result into task names.
// Dependency keys are visited in execution order first, then alphabetically.
func HumanizeDependencies(result map[string]any, tasks []Task) string {
	names := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if id := t.ID(); id != "" {
			names[id] = t.Name()
		}
	}

	order, _ := result["execution_order"].([]any)
	var execNames []string
	for _, id := range order {
		if name, ok := names[scalar(id)]; ok {
			execNames = append(execNames, name)
		}
	}

	var depNames []string
	if deps, ok := result["dependencies"].(map[string]any); ok {
		for _, id := range dependencyKeys(deps, order) {
			if !hasDependencies(deps[id]) {
				continue
			}
			if name, ok := names[id]; ok {
				depNames = append(depNames, name)
			}
		}
	}

	var lines []string
	if execNames = uniq(execNames); len(execNames) > 0 {
		lines = append(lines, "Execution order tasks:")
		for _, n := range execNames {
			lines = append(lines, "- "+n)
		}
	}
	if depNames = uniq(depNames); len(depNames) > 0 {
		lines = append(lines, "Tasks with dependencies:")
		for _, n := range depNames {
			lines = append(lines, "- "+n)
		}
	}
	if len(lines) == 0 {
		return NoNamesResolved
	}
	return strings.Join(lines, "\n")
}

func dependencyKeys(deps map[string]any, order []any) []string {
	keys := make([]string, 0, len(deps))
	seen := make(map[string]struct{}, len(deps))
	for _, id := range order {
		key := scalar(id)
		if _, ok := deps[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	var rest []string
	for key := range deps {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func hasDependencies(v any) bool {
	switch d := v.(type) {
	case nil:
		return false
	case []any:
		return len(d) > 0
	case map[string]any:
		return len(d) > 0
	case string:
		return d != ""
	case bool:
		return d
	case float64:
		return d != 0
	default:
		return true
	}
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
