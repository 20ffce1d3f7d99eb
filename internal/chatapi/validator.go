package chatapi

import "fmt"

// ValidateMessageSequence enforces that every tool message responds to the
// most recent assistant message that carries tool_calls, and that its
// tool_call_id matches one of those ids. It returns a descriptive error the
// first time the sequence is invalid; nil otherwise.
//
// This mirrors the chat-completions API's own requirement that tool outputs
// must answer a prior assistant tool call in the same message list.
func ValidateMessageSequence(messages []Message) error {
	currentAllowedIDs := map[string]struct{}{}
	hasAllowed := false
	for i, m := range messages {
		switch m.Role {
		case RoleAssistant:
			if len(m.ToolCalls) > 0 {
				currentAllowedIDs = make(map[string]struct{}, len(m.ToolCalls))
				for _, tc := range m.ToolCalls {
					if tc.ID != "" {
						currentAllowedIDs[tc.ID] = struct{}{}
					}
				}
				hasAllowed = true
			}
		case RoleTool:
			if !hasAllowed {
				return fmt.Errorf("invalid message sequence at index %d: role %q with no prior assistant tool_calls", i, RoleTool)
			}
			if m.ToolCallID == "" {
				return fmt.Errorf("invalid message sequence at index %d: role %q missing tool_call_id", i, RoleTool)
			}
			if _, ok := currentAllowedIDs[m.ToolCallID]; !ok {
				return fmt.Errorf("invalid message sequence at index %d: tool_call_id %q does not match any pending assistant tool call", i, m.ToolCallID)
			}
		}
	}
	return nil
}
