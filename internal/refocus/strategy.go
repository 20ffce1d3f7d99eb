package refocus

import (
	"strings"

	"github.com/mrjeeves/qwen-code/internal/chatapi"
)

// PleaseContinue is the canned "keep going" prompt an agent loop injects
// when it resumes a conversation mid tool-cycle.
const PleaseContinue = "Please continue."

// Strategy is the Strategy Analyzer's verdict on whether the last tool-call
// cycle in a conversation must be kept live rather than summarized away.
type Strategy struct {
	KeepLastCycle bool
	KeptIDs       map[string]struct{}
}

// AnalyzeStrategy decides whether the last tool-call cycle in a conversation
// must be kept live: the LLM is mid-reasoning over that cycle only when the
// conversation ends in a tool result (Case A) or in a "Please continue."
// prompt that itself follows a tool result (Case B).
func AnalyzeStrategy(realConversation []chatapi.Message) Strategy {
	if len(realConversation) == 0 {
		return Strategy{KeptIDs: map[string]struct{}{}}
	}

	last := realConversation[len(realConversation)-1]

	if last.Role == chatapi.RoleTool {
		return analyzeToolTail(realConversation, last)
	}

	if last.Role == chatapi.RoleUser &&
		strings.TrimSpace(last.Content) == PleaseContinue &&
		len(realConversation) >= 2 &&
		realConversation[len(realConversation)-2].Role == chatapi.RoleTool {
		secondToLast := realConversation[len(realConversation)-2]
		return analyzeToolTail(realConversation, secondToLast)
	}

	return Strategy{KeptIDs: map[string]struct{}{}}
}

// analyzeToolTail implements Case A for a trailing tool message: find the
// assistant message that owns its tool_call_id and keep the entire parallel
// fan-out of that assistant's tool calls together.
func analyzeToolTail(conversation []chatapi.Message, toolMsg chatapi.Message) Strategy {
	for _, m := range conversation {
		if m.Role != chatapi.RoleAssistant {
			continue
		}
		for _, tc := range m.ToolCalls {
			if tc.ID == toolMsg.ToolCallID {
				kept := make(map[string]struct{}, len(m.ToolCalls))
				for _, sibling := range m.ToolCalls {
					kept[sibling.ID] = struct{}{}
				}
				return Strategy{KeepLastCycle: true, KeptIDs: kept}
			}
		}
	}
	kept := map[string]struct{}{}
	if toolMsg.ToolCallID != "" {
		kept[toolMsg.ToolCallID] = struct{}{}
	}
	return Strategy{KeepLastCycle: true, KeptIDs: kept}
}
