package chatapi

import "math"

// EstimateTokens returns a rough, deterministic token estimate for a set of
// chat messages. It intentionally avoids any external tokenizer dependency
// and is stable across platforms.
//
// Heuristic:
//   - ~4 characters per token
//   - a small fixed overhead per message for role/formatting
//   - a coarse per-tool-call overhead for name+arguments
func EstimateTokens(messages []Message) int {
	const averageCharsPerToken = 4.0
	const perMessageOverheadTokens = 4
	const perToolCallOverheadTokens = 8

	total := 0
	for _, msg := range messages {
		if msg.Content != "" {
			total += int(math.Ceil(float64(len(msg.Content)) / averageCharsPerToken))
		}
		if msg.ToolCallID != "" {
			total += int(math.Ceil(float64(len(msg.ToolCallID)) / averageCharsPerToken))
		}
		for _, tc := range msg.ToolCalls {
			total += perToolCallOverheadTokens
			if tc.Function.Name != "" {
				total += int(math.Ceil(float64(len(tc.Function.Name)) / averageCharsPerToken))
			}
			if tc.Function.Arguments != "" {
				total += int(math.Ceil(float64(len(tc.Function.Arguments)) / averageCharsPerToken))
			}
		}
		total += perMessageOverheadTokens
	}

	if total < len(messages) {
		total = len(messages)
	}
	return total
}
