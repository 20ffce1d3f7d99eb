package refocus

import (
	"encoding/json"

	"github.com/mrjeeves/qwen-code/internal/chatapi"
)

// OpKind identifies the disk effect a file-operation tool call has.
type OpKind string

const (
	OpRead  OpKind = "read"
	OpWrite OpKind = "write"
	OpEdit  OpKind = "edit"
)

// FileOperation is the classifier's verdict on one tool call: what kind of
// file operation it represents, which path it targets, and (for reads) what
// line range it asked for.
type FileOperation struct {
	Kind       OpKind
	Path       string
	Range      *LineRange
	ToolCallID string
}

// fileOpToolNames is the recognized file-operation vocabulary.
var fileOpToolNames = map[string]bool{
	"read_file":       true,
	"read_many_files": true,
	"write_file":      true,
	"replace":         true,
}

// IsFileOpToolName reports whether name is in the recognized file-operation
// vocabulary, without attempting to classify a specific call.
func IsFileOpToolName(name string) bool { return fileOpToolNames[name] }

// Classify decodes a tool call's arguments and, if it is a recognized file
// operation with the fields that operation requires, returns the
// corresponding FileOperation. It returns nil for anything else, including
// malformed JSON arguments. Classify is pure: it never touches disk. The
// result parameter is accepted for symmetry with the (ToolCall, result)
// pairs this module threads everywhere else, but classification depends
// only on the call's arguments.
func Classify(tc chatapi.ToolCall, result string) *FileOperation {
	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		return nil
	}

	switch tc.Function.Name {
	case "read_file", "read_many_files":
		path, ok := args["absolute_path"].(string)
		if !ok {
			paths, ok := args["absolute_paths"].([]any)
			if !ok || len(paths) == 0 {
				return nil
			}
			first, ok := paths[0].(string)
			if !ok {
				return nil
			}
			path = first
		}
		return &FileOperation{
			Kind:       OpRead,
			Path:       path,
			Range:      rangeFromArgs(args),
			ToolCallID: tc.ID,
		}

	case "write_file":
		path, ok := args["file_path"].(string)
		if !ok {
			return nil
		}
		if _, hasContent := args["content"]; !hasContent {
			return nil
		}
		return &FileOperation{Kind: OpWrite, Path: path, ToolCallID: tc.ID}

	case "replace":
		path, ok := args["file_path"].(string)
		if !ok {
			return nil
		}
		return &FileOperation{Kind: OpEdit, Path: path, ToolCallID: tc.ID}

	default:
		return nil
	}
}

// rangeFromArgs extracts an optional offset/limit pair from decoded JSON
// arguments. JSON numbers decode as float64; both fields are optional.
func rangeFromArgs(args map[string]any) *LineRange {
	r := LineRange{}
	if v, ok := args["offset"].(float64); ok {
		r.Offset = int(v)
	}
	if v, ok := args["limit"].(float64); ok {
		limit := int(v)
		r.Limit = &limit
	}
	return &r
}
