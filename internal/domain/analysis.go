package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Analysis is the structured result produced by the inference client.
type Analysis struct {
	Summary  string
	Tags     []string
	Category string
	Urgency  int
}

// NormalizeSummary flattens the summary field of a model response into a
// single string. Models return the field inconsistently: sometimes a plain
// string, sometimes a list of sentences, sometimes a section→text mapping.
// Map sections are concatenated in key order so the result is deterministic.
func NormalizeSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, " "))
	}

	var sections map[string]string
	if err := json.Unmarshal(raw, &sections); err == nil {
		keys := make([]string, 0, len(sections))
		for k := range sections {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, sections[k])
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	}

	return ""
}
