// Package refocus rewrites a chat-completions message list into a shorter,
// semantically equivalent one: the last live tool-call cycle is preserved
// intact, earlier tool cycles are collapsed into a context block inside a
// regenerated system prompt, and prior file-I/O traffic is replaced by a
// virtual-filesystem snapshot re-read from disk.
package refocus

import "github.com/mrjeeves/qwen-code/internal/chatapi"

// Refocus is the module's entry point: it deconstructs input, builds the
// VFS and composed system prompt, and rebuilds a shorter message list that
// keeps every tool message pointing at a live tool_calls entry earlier in
// the same list. It uses DefaultConfig(); use RefocusWithConfig to override
// the search-result truncation limits or the audit log path.
func Refocus(input []chatapi.Message) []chatapi.Message {
	return RefocusWithConfig(input, DefaultConfig())
}

// RefocusWithConfig is Refocus with an explicit Config, for callers that
// have loaded one via LoadConfig.
func RefocusWithConfig(input []chatapi.Message, cfg Config) []chatapi.Message {
	dt := Deconstruct(input)
	system := ComposeSystemPrompt(cfg, dt)
	out := Rebuild(cfg, dt, system)
	logInvocation(cfg, dt, len(out))
	return out
}
