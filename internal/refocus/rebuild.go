package refocus

import (
	"strings"

	"github.com/mrjeeves/qwen-code/internal/chatapi"
)

// Rebuild produces the final message list: the composed system message
// followed by the real conversation with moved tool calls spliced out, the
// canned preamble skipped, and stale "Please continue." prompts dropped —
// then run through CollapseAssistants to merge adjacent assistant turns.
func Rebuild(cfg Config, dt DeconstructedTranscript, composedSystem string) []chatapi.Message {
	movedIDs := map[string]struct{}{}
	for _, pair := range dt.ResidualToolPairs {
		movedIDs[pair.Call.ID] = struct{}{}
	}
	for id := range dt.FileOpToolCallIDs {
		movedIDs[id] = struct{}{}
	}

	callByID := make(map[string]chatapi.ToolCall)
	for _, m := range dt.RealConversation {
		if m.Role != chatapi.RoleAssistant {
			continue
		}
		for _, tc := range m.ToolCalls {
			if tc.ID != "" {
				callByID[tc.ID] = tc
			}
		}
	}

	out := make([]chatapi.Message, 0, len(dt.RealConversation)+1)
	out = append(out, chatapi.Message{Role: chatapi.RoleSystem, Content: composedSystem})

	for i, m := range dt.RealConversation {
		switch m.Role {
		case chatapi.RoleSystem:
			// Dropped: we already emitted our own.

		case chatapi.RoleTool:
			if _, moved := movedIDs[m.ToolCallID]; moved {
				continue
			}
			name := callByID[m.ToolCallID].Function.Name
			out = append(out, chatapi.Message{
				Role:       chatapi.RoleTool,
				Content:    TruncateSearchResult(cfg, name, m.Content),
				ToolCallID: m.ToolCallID,
			})

		case chatapi.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				var surviving []chatapi.ToolCall
				for _, tc := range m.ToolCalls {
					if _, moved := movedIDs[tc.ID]; !moved {
						surviving = append(surviving, tc)
					}
				}
				if len(surviving) > 0 {
					out = append(out, chatapi.Message{
						Role:      chatapi.RoleAssistant,
						Content:   m.Content,
						ToolCalls: surviving,
					})
				} else if strings.TrimSpace(m.Content) != "" {
					out = append(out, chatapi.Message{Role: chatapi.RoleAssistant, Content: m.Content})
				}
			} else if strings.TrimSpace(m.Content) != "" {
				out = append(out, m)
			}

		case chatapi.RoleUser:
			if strings.TrimSpace(m.Content) == PleaseContinue {
				isLast := i == len(dt.RealConversation)-1
				if isLast && dt.Strategy.KeepLastCycle {
					out = append(out, m)
				}
				continue
			}
			out = append(out, m)

		default:
			out = append(out, m)
		}
	}

	return CollapseAssistants(out)
}
