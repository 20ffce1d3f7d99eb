// Command qwen-refocus is a demonstration harness for internal/refocus. It
// is not an agent loop itself (that caller lives elsewhere) — it only
// reads a transcript, applies Refocus, optionally enforces a token budget
// on top of it, and writes the result back out as a {"messages":[...]}
// wrapper object, whichever of the two accepted shapes it read.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrjeeves/qwen-code/internal/chatapi"
	"github.com/mrjeeves/qwen-code/internal/refocus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	inPath := flag.String("in", "-", "transcript file to refocus, or - for STDIN")
	outPath := flag.String("out", "", "output file; empty means STDOUT")
	configPath := flag.String("config", "", "optional YAML config overriding truncation limits and log path")
	maxTokens := flag.Int("max-tokens", 0, "optional hard token ceiling applied to Refocus's output")
	flag.Parse()

	data, err := readInput(*inPath)
	if err != nil {
		return err
	}

	messages, err := parseTranscript(data)
	if err != nil {
		return fmt.Errorf("parse transcript: %w", err)
	}

	cfg := refocus.LoadConfig(*configPath)
	out := refocus.RefocusWithConfig(messages, cfg)

	if *maxTokens > 0 {
		out = chatapi.TrimMessagesToFit(out, *maxTokens)
	}

	encoded, err := writeTranscript(out)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	if *outPath == "" {
		fmt.Println(string(encoded))
		return nil
	}
	return writeFileAtomic(*outPath, encoded, 0o644)
}
