package refocus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/mrjeeves/qwen-code/internal/chatapi"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LogPath = filepath.Join(t.TempDir(), "qwen.log")
	return cfg
}

func TestRefocus_EmptyShortInputPassesThrough(t *testing.T) {
	input := []chatapi.Message{
		{Role: chatapi.RoleSystem, Content: "you are an agent"},
		{Role: chatapi.RoleUser, Content: "hello"},
	}
	out := RefocusWithConfig(input, testConfig(t))

	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d: %+v", len(out), out)
	}
	if out[0].Role != chatapi.RoleSystem {
		t.Fatalf("expected system message first")
	}
	if out[1].Content != "hello" {
		t.Fatalf("expected user message preserved verbatim, got %q", out[1].Content)
	}
}

func TestRefocus_SingleCompletedReadCycleFoldsIntoVFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	input := []chatapi.Message{
		{Role: chatapi.RoleSystem, Content: "sys"},
		{Role: chatapi.RoleUser, Content: "ctx"},
		{Role: chatapi.RoleAssistant, Content: "ack"},
		{Role: chatapi.RoleAssistant, ToolCalls: []chatapi.ToolCall{
			{ID: "c1", Function: chatapi.ToolCallFunction{Name: "read_file", Arguments: `{"absolute_path":"` + path + `","offset":0,"limit":3}`}},
		}},
		{Role: chatapi.RoleTool, ToolCallID: "c1", Content: "line1\nline2\nline3"},
		{Role: chatapi.RoleUser, Content: "what next?"},
	}
	out := RefocusWithConfig(input, testConfig(t))

	if out[0].Role != chatapi.RoleSystem {
		t.Fatalf("expected system message first")
	}
	systemCount := 0
	for _, m := range out {
		if m.Role == chatapi.RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Fatalf("expected exactly one system message, got %d", systemCount)
	}
	if !strings.Contains(out[0].Content, "Lines 1-3:") || !strings.Contains(out[0].Content, "one\ntwo\nthree") {
		t.Fatalf("expected VFS section with current disk content, got %q", out[0].Content)
	}
	for _, m := range out {
		for _, tc := range m.ToolCalls {
			if tc.ID == "c1" {
				t.Fatalf("expected no assistant message owning the read_file call, got %+v", out)
			}
		}
		if m.Role == chatapi.RoleTool && m.ToolCallID == "c1" {
			t.Fatalf("expected the tool result absent from output, got %+v", out)
		}
	}
	found := false
	for _, m := range out {
		if m.Content == "what next?" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected trailing user question verbatim, got %+v", out)
	}
}

func TestRefocus_ParallelToolFanOutAsLastCycleIsKept(t *testing.T) {
	var hits []string
	for i := 1; i <= 200; i++ {
		hits = append(hits, "L"+strconv.Itoa(i)+": match")
	}
	grepResult, err := json.Marshal(map[string]any{"output": strings.Join(hits, "\n")})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	input := []chatapi.Message{
		{Role: chatapi.RoleSystem, Content: "sys"},
		{Role: chatapi.RoleUser, Content: "ctx"},
		{Role: chatapi.RoleAssistant, Content: "ack"},
		{Role: chatapi.RoleAssistant, ToolCalls: []chatapi.ToolCall{
			{ID: "c1", Function: chatapi.ToolCallFunction{Name: "search_file_content", Arguments: `{"pattern":"match"}`}},
			{ID: "c2", Function: chatapi.ToolCallFunction{Name: "read_file", Arguments: `{"absolute_path":"/nonexistent.txt"}`}},
		}},
		{Role: chatapi.RoleTool, ToolCallID: "c1", Content: string(grepResult)},
		{Role: chatapi.RoleTool, ToolCallID: "c2", Content: "file content"},
	}
	out := RefocusWithConfig(input, testConfig(t))

	var assistantWithCalls *chatapi.Message
	for i := range out {
		if out[i].Role == chatapi.RoleAssistant && len(out[i].ToolCalls) == 2 {
			assistantWithCalls = &out[i]
		}
	}
	if assistantWithCalls == nil {
		t.Fatalf("expected assistant message retaining both tool calls, got %+v", out)
	}

	var t1, t2 *chatapi.Message
	for i := range out {
		if out[i].Role == chatapi.RoleTool && out[i].ToolCallID == "c1" {
			t1 = &out[i]
		}
		if out[i].Role == chatapi.RoleTool && out[i].ToolCallID == "c2" {
			t2 = &out[i]
		}
	}
	if t1 == nil || t2 == nil {
		t.Fatalf("expected both tool results retained, got %+v", out)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(t1.Content), &decoded); err != nil {
		t.Fatalf("expected valid JSON in truncated grep result: %v", err)
	}
	rendered, _ := decoded["output"].(string)
	if !strings.Contains(rendered, "truncated 180 more results") {
		t.Fatalf("expected truncation annotation, got %q", rendered)
	}
	if strings.Count(rendered, "\nL") > 19 {
		t.Fatalf("expected at most 20 hit lines retained, got %q", rendered)
	}
}

func TestRefocus_OnlyTrailingPleaseContinueSurvives(t *testing.T) {
	input := []chatapi.Message{
		{Role: chatapi.RoleSystem, Content: "sys"},
		{Role: chatapi.RoleUser, Content: "ctx"},
		{Role: chatapi.RoleAssistant, Content: "ack"},
		{Role: chatapi.RoleUser, Content: "Please continue."},
		{Role: chatapi.RoleAssistant, ToolCalls: []chatapi.ToolCall{
			{ID: "c1", Function: chatapi.ToolCallFunction{Name: "run_shell_command", Arguments: `{"command":"ls"}`}},
		}},
		{Role: chatapi.RoleTool, ToolCallID: "c1", Content: "result"},
		{Role: chatapi.RoleUser, Content: "Please continue."},
	}
	out := RefocusWithConfig(input, testConfig(t))

	count := 0
	lastIsPleaseContinue := false
	for i, m := range out {
		if m.Content == "Please continue." {
			count++
			lastIsPleaseContinue = i == len(out)-1
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one surviving Please continue., got %d in %+v", count, out)
	}
	if !lastIsPleaseContinue {
		t.Fatalf("expected surviving Please continue. to be the final message, got %+v", out)
	}
}

func TestRefocus_ConsecutiveAssistantTurnsCollapse(t *testing.T) {
	input := []chatapi.Message{
		{Role: chatapi.RoleSystem, Content: "sys"},
		{Role: chatapi.RoleUser, Content: "ctx"},
		{Role: chatapi.RoleAssistant, Content: "ack"},
		{Role: chatapi.RoleUser, Content: "go"},
		{Role: chatapi.RoleAssistant, Content: "thinking..."},
		{Role: chatapi.RoleAssistant, ToolCalls: []chatapi.ToolCall{
			{ID: "c1", Function: chatapi.ToolCallFunction{Name: "run_shell_command", Arguments: `{"command":"ls"}`}},
		}},
		{Role: chatapi.RoleTool, ToolCallID: "c1", Content: "result"},
		{Role: chatapi.RoleAssistant, Content: "done"},
	}
	out := RefocusWithConfig(input, testConfig(t))

	var assistants []chatapi.Message
	for _, m := range out {
		if m.Role == chatapi.RoleAssistant {
			assistants = append(assistants, m)
		}
	}
	if len(assistants) != 1 {
		t.Fatalf("expected the three assistant turns to collapse into one, got %+v", assistants)
	}
	if assistants[0].Content != "thinking...\ndone" {
		t.Fatalf("unexpected collapsed content: %q", assistants[0].Content)
	}
	for _, m := range out {
		if m.Role == chatapi.RoleTool && m.ToolCallID == "c1" {
			t.Fatalf("expected moved tool result absent from output, got %+v", out)
		}
	}
}

func TestRefocus_WriteThenReadUsesCurrentDiskContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(path, []byte("X"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	input := []chatapi.Message{
		{Role: chatapi.RoleSystem, Content: "sys"},
		{Role: chatapi.RoleUser, Content: "ctx"},
		{Role: chatapi.RoleAssistant, Content: "ack"},
		{Role: chatapi.RoleAssistant, ToolCalls: []chatapi.ToolCall{
			{ID: "w1", Function: chatapi.ToolCallFunction{Name: "write_file", Arguments: `{"file_path":"` + path + `","content":"OLD"}`}},
		}},
		{Role: chatapi.RoleTool, ToolCallID: "w1", Content: "ok"},
		{Role: chatapi.RoleAssistant, ToolCalls: []chatapi.ToolCall{
			{ID: "r1", Function: chatapi.ToolCallFunction{Name: "read_file", Arguments: `{"absolute_path":"` + path + `"}`}},
		}},
		{Role: chatapi.RoleTool, ToolCallID: "r1", Content: "OLD"},
		{Role: chatapi.RoleUser, Content: "done?"},
	}
	out := RefocusWithConfig(input, testConfig(t))

	if strings.Contains(out[0].Content, "OLD") {
		t.Fatalf("expected stale write content absent from VFS section, got %q", out[0].Content)
	}
	if !strings.Contains(out[0].Content, "X") {
		t.Fatalf("expected current disk content \"X\" in VFS section, got %q", out[0].Content)
	}
}
