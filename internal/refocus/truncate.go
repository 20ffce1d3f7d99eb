package refocus

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// searchFileContentTool is the only tool name the truncator acts on.
const searchFileContentTool = "search_file_content"

var hitLinePattern = regexp.MustCompile(`^(L\d+:\s?)(.*)$`)

// TruncateSearchResult bounds the size of a search_file_content tool
// result before it is embedded in a system prompt. Any other function name
// is passed through unchanged. Malformed JSON, or JSON whose "output" field
// is not a string, is also passed through unchanged.
func TruncateSearchResult(cfg Config, functionName, result string) string {
	if functionName != searchFileContentTool {
		return result
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		return result
	}
	output, ok := decoded["output"].(string)
	if !ok {
		return result
	}

	decoded["output"] = truncateHitLines(cfg, output)

	b, err := json.Marshal(decoded)
	if err != nil {
		return result
	}
	return string(b)
}

func truncateHitLines(cfg Config, output string) string {
	maxHits := cfg.MaxSearchHitLines
	maxChars := cfg.MaxHitLineChars

	lines := strings.Split(output, "\n")

	total := 0
	for _, line := range lines {
		if hitLinePattern.MatchString(line) {
			total++
		}
	}

	if total <= maxHits {
		out := make([]string, len(lines))
		for i, line := range lines {
			out[i] = shortenHitLine(line, maxChars)
		}
		return strings.Join(out, "\n")
	}

	var kept []string
	hits := 0
	for _, line := range lines {
		if hitLinePattern.MatchString(line) {
			hits++
			kept = append(kept, shortenHitLine(line, maxChars))
			if hits == maxHits {
				break
			}
			continue
		}
		kept = append(kept, line)
	}
	kept = append(kept, fmt.Sprintf("[... truncated %d more results]", total-maxHits))
	return strings.Join(kept, "\n")
}

func shortenHitLine(line string, maxChars int) string {
	m := hitLinePattern.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	prefix, content := m[1], m[2]
	if len(content) <= maxChars {
		return line
	}
	return prefix + content[:maxChars] + "..."
}
