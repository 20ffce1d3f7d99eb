package refocus

import (
	"strings"

	"github.com/mrjeeves/qwen-code/internal/chatapi"
)

// CollapseAssistants walks a message list and folds each run of consecutive
// assistant messages into one: their non-empty, trimmed content strings are
// concatenated (first-occurrence order, exact duplicates suppressed) and
// their tool-call lists are concatenated without dedup. A run whose
// collected content and tool calls are both empty produces nothing.
// Non-assistant messages pass through unchanged.
func CollapseAssistants(messages []chatapi.Message) []chatapi.Message {
	out := make([]chatapi.Message, 0, len(messages))

	for i := 0; i < len(messages); {
		if messages[i].Role != chatapi.RoleAssistant {
			out = append(out, messages[i])
			i++
			continue
		}

		j := i
		var contents []string
		seen := map[string]struct{}{}
		var calls []chatapi.ToolCall
		for j < len(messages) && messages[j].Role == chatapi.RoleAssistant {
			c := strings.TrimSpace(messages[j].Content)
			if c != "" {
				if _, dup := seen[c]; !dup {
					seen[c] = struct{}{}
					contents = append(contents, c)
				}
			}
			calls = append(calls, messages[j].ToolCalls...)
			j++
		}

		if len(contents) > 0 || len(calls) > 0 {
			out = append(out, chatapi.Message{
				Role:      chatapi.RoleAssistant,
				Content:   joinLines(contents),
				ToolCalls: calls,
			})
		}
		i = j
	}

	return out
}

func joinLines(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}
