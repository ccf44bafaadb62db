package inference

import (
	"encoding/json"
	"strings"

	"NewsHarvester/internal/domain"
)

// modelResponse mirrors the JSON contract in the prompt. Summary stays raw
// because models return it as a string, a list, or a section mapping.
type modelResponse struct {
	Summary  json.RawMessage `json:"summary"`
	Tags     []string        `json:"tags"`
	Category string          `json:"category"`
	Urgency  int             `json:"urgency"`
}

// parseAnalysis turns raw model output into a structured analysis. A nil
// return means the output was empty or unparseable: "no usable result", not
// a hard error.
func parseAnalysis(raw string) *domain.Analysis {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil
	}

	var decoded modelResponse
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil
	}

	return &domain.Analysis{
		Summary:  domain.NormalizeSummary(decoded.Summary),
		Tags:     decoded.Tags,
		Category: decoded.Category,
		Urgency:  clampUrgency(decoded.Urgency),
	}
}

// stripCodeFences removes markdown code-fence wrappers. Models often wrap
// JSON in ```json ... ``` blocks even when instructed not to.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

// clampUrgency caps urgency at 10 and maps anything non-positive to zero,
// which downstream reads as "no urgency produced".
func clampUrgency(u int) int {
	if u <= 0 {
		return 0
	}
	if u > 10 {
		return 10
	}
	return u
}
