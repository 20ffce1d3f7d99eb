package main

import (
	"encoding/json"
	"strings"

	"github.com/mrjeeves/qwen-code/internal/chatapi"
)

// parseTranscript accepts either a bare JSON array of chatapi.Message
// (legacy shape) or a {"messages":[...]} wrapper object, mirroring the
// two shapes session files in the wild tend to use.
func parseTranscript(data []byte) ([]chatapi.Message, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var msgs []chatapi.Message
		if err := json.Unmarshal([]byte(trimmed), &msgs); err != nil {
			return nil, err
		}
		return msgs, nil
	}
	var wrapper struct {
		Messages []chatapi.Message `json:"messages"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Messages, nil
}

// writeTranscript re-encodes messages as a {"messages":[...]} wrapper
// object; a bare-array input is not written back as a bare array.
func writeTranscript(messages []chatapi.Message) ([]byte, error) {
	wrapper := struct {
		Messages []chatapi.Message `json:"messages"`
	}{Messages: messages}
	return json.MarshalIndent(wrapper, "", "  ")
}
