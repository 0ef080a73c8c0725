package synthesizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

var reviewSections = []string{"summary", "spelling_errors", "grammar_errors", "compliance_issues"}

// asReview returns the result as a document-review payload when it has that shape:
// an overall_score plus at least one of the review sections.
func asReview(result any) (map[string]any, bool) {
	var doc map[string]any
	switch v := result.(type) {
	case map[string]any:
		doc = v
	case string:
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &doc); err != nil {
			return nil, false
		}
	case json.RawMessage:
		if err := json.Unmarshal(v, &doc); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}

	if _, ok := doc["overall_score"]; !ok {
		return nil, false
	}
	for _, key := range reviewSections {
		if _, ok := doc[key]; ok {
			return doc, true
		}
	}
	return nil, false
}

// RenderReview formats a document-review payload as markdown.
func RenderReview(doc map[string]any) string {
	var md []string

	md = append(md, "## Document Review Summary\n")
	md = append(md, fmt.Sprintf("**Overall Score:** %.1f%%\n", number(doc["overall_score"])*100))
	if summary := text(doc["summary"]); summary != "" {
		md = append(md, summary+"\n")
	}

	if spelling := items(doc["spelling_errors"]); len(spelling) > 0 {
		md = append(md, fmt.Sprintf("\n### Spelling Errors (%d)\n", len(spelling)))
		for _, e := range spelling {
			md = append(md, fmt.Sprintf("- **%s** → %s", textOr(e["error"], "N/A"), textOr(e["suggestion"], "N/A")))
			if loc := text(e["location"]); loc != "" {
				md = append(md, fmt.Sprintf("  - *Location: %s*", loc))
			}
			md = append(md, "")
		}
	}

	if grammar := items(doc["grammar_errors"]); len(grammar) > 0 {
		md = append(md, fmt.Sprintf("\n### Grammar Errors (%d)\n", len(grammar)))
		for _, e := range grammar {
			md = append(md, fmt.Sprintf("- **%s** → %s", textOr(e["error"], "N/A"), textOr(e["suggestion"], "N/A")))
			if kind := text(e["type"]); kind != "" {
				md = append(md, fmt.Sprintf("  - *Type: %s*", kind))
			}
			if loc := text(e["location"]); loc != "" {
				md = append(md, fmt.Sprintf("  - *Location: %s*", loc))
			}
			md = append(md, "")
		}
	}

	if compliance := items(doc["compliance_issues"]); len(compliance) > 0 {
		md = append(md, fmt.Sprintf("\n### Compliance Issues (%d)\n", len(compliance)))
		for _, issue := range compliance {
			severity := textOr(issue["severity"], "unknown")
			md = append(md, fmt.Sprintf("- %s **%s**: %s", severityMarker(severity), strings.ToUpper(severity), textOr(issue["issue"], "N/A")))
			if suggestion := text(issue["suggestion"]); suggestion != "" {
				md = append(md, fmt.Sprintf("  - *Suggestion: %s*", suggestion))
			}
			md = append(md, "")
		}
	}

	return strings.Join(md, "\n")
}

func severityMarker(severity string) string {
	switch severity {
	case "high":
		return "🔴"
	case "medium":
		return "🟡"
	default:
		return "🟢"
	}
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func textOr(v any, fallback string) string {
	if s := text(v); s != "" {
		return s
	}
	return fallback
}

func items(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
