package prompt

import (
	"encoding/json"
	"strings"
)

// SEOAnalysis is the machine-readable block the SEO role ends its output with.
type SEOAnalysis struct {
	Score             float64  `json:"score"`
	OptimizationTips  []string `json:"optimizationTips"`
	SuggestedKeywords []string `json:"suggestedKeywords"`
}

// FallbackSEOAnalysis is returned when no analysis block can be parsed.
func FallbackSEOAnalysis() SEOAnalysis {
	return SEOAnalysis{
		Score:             0,
		OptimizationTips:  []string{"Analysis unavailable"},
		SuggestedKeywords: []string{},
	}
}

// ParseSEOAnalysis extracts the outermost JSON object ending at the last
// closing brace of content.
func ParseSEOAnalysis(content string) SEOAnalysis {
	end := strings.LastIndex(content, "}")
	if end < 0 {
		return FallbackSEOAnalysis()
	}

	for start := strings.Index(content, "{"); start >= 0 && start < end; {
		var a SEOAnalysis
		if err := json.Unmarshal([]byte(content[start:end+1]), &a); err == nil {
			if a.OptimizationTips == nil {
				a.OptimizationTips = []string{}
			}
			if a.SuggestedKeywords == nil {
				a.SuggestedKeywords = []string{}
			}
			return a
		}

		next := strings.Index(content[start+1:], "{")
		if next < 0 {
			break
		}
		start += next + 1
	}

	return FallbackSEOAnalysis()
}
