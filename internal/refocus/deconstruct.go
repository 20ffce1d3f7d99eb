package refocus

import "github.com/mrjeeves/qwen-code/internal/chatapi"

// ToolPair links one tool call to the result message that answered it.
type ToolPair struct {
	Call   chatapi.ToolCall
	Result string
}

// DeconstructedTranscript is the Deconstructor's output: the canned
// preamble pulled apart into its three fields, the real conversation that
// follows it, and everything the later stages need to rebuild a shorter
// transcript from it.
type DeconstructedTranscript struct {
	SystemPrompt       string
	CannedUserContext  string
	CannedAssistantAck string
	RealConversation   []chatapi.Message

	Strategy Strategy

	// MovableToolPairs holds every tool call/result pair eligible for
	// summarization: everything except the pairs belonging to the kept
	// last tool cycle.
	MovableToolPairs []ToolPair
	// ResidualToolPairs is MovableToolPairs with file operations removed;
	// this is what the system-prompt composer renders as prior tool calls.
	ResidualToolPairs []ToolPair
	// FileOpToolCallIDs holds the ids of MovableToolPairs classified as
	// file operations — their results are represented by VFS instead.
	FileOpToolCallIDs map[string]struct{}

	VFS VFS
}

// Deconstruct splits an input message list into its canned preamble and
// real conversation, pairs every tool result with its originating tool
// call, and classifies the movable pairs into VFS-backed file operations
// versus a residual set embedded verbatim.
func Deconstruct(input []chatapi.Message) DeconstructedTranscript {
	var dt DeconstructedTranscript

	real := input
	if len(input) >= 3 {
		if input[0].Role == chatapi.RoleSystem {
			dt.SystemPrompt = input[0].Content
		}
		if input[1].Role == chatapi.RoleUser {
			dt.CannedUserContext = input[1].Content
		}
		if input[2].Role == chatapi.RoleAssistant {
			dt.CannedAssistantAck = input[2].Content
		}
		real = input[3:]
	}
	dt.RealConversation = real

	dt.Strategy = AnalyzeStrategy(real)

	callByID := make(map[string]chatapi.ToolCall)
	for _, m := range input {
		if m.Role != chatapi.RoleAssistant {
			continue
		}
		for _, tc := range m.ToolCalls {
			if tc.ID != "" {
				callByID[tc.ID] = tc
			}
		}
	}

	for _, m := range input {
		if m.Role != chatapi.RoleTool {
			continue
		}
		call, ok := callByID[m.ToolCallID]
		if !ok {
			continue
		}
		if dt.Strategy.KeepLastCycle {
			if _, kept := dt.Strategy.KeptIDs[call.ID]; kept {
				continue
			}
		}
		dt.MovableToolPairs = append(dt.MovableToolPairs, ToolPair{Call: call, Result: m.Content})
	}

	dt.VFS = BuildVFS(dt.MovableToolPairs)

	dt.FileOpToolCallIDs = map[string]struct{}{}
	for _, pair := range dt.MovableToolPairs {
		if Classify(pair.Call, pair.Result) != nil {
			dt.FileOpToolCallIDs[pair.Call.ID] = struct{}{}
			continue
		}
		dt.ResidualToolPairs = append(dt.ResidualToolPairs, pair)
	}

	return dt
}
