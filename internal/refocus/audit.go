package refocus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// auditEntry is the JSON payload logged alongside each invocation's
// timestamp/message line.
type auditEntry struct {
	InvocationID    string   `json:"invocation_id"`
	InputMessages   int      `json:"input_messages"`
	OutputMessages  int      `json:"output_messages"`
	KeptLastCycle   bool     `json:"kept_last_cycle"`
	VFSPaths        []string `json:"vfs_paths"`
}

// stderrWarner is a package-level zerolog logger used only to report an
// audit-log write failure. It never touches the log file itself — that
// format is a fixed external contract (see DESIGN.md) — it only reports
// that the write failed.
var stderrWarner = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

// logInvocation appends one entry to the audit log in exactly this format:
//
//	[<ISO-8601-UTC-timestamp>] <message>
//	<JSON-pretty-printed data>
//	<blank line>
//
// Failures are swallowed for the caller and reported to stderr only.
func logInvocation(cfg Config, dt DeconstructedTranscript, outputLen int) {
	paths := make([]string, 0, len(dt.VFS))
	for p := range dt.VFS {
		paths = append(paths, p)
	}

	entry := auditEntry{
		InvocationID:   uuid.NewString(),
		InputMessages:  len(dt.RealConversation) + 3,
		OutputMessages: outputLen,
		KeptLastCycle:  dt.Strategy.KeepLastCycle,
		VFSPaths:       paths,
	}

	if err := appendAuditLine(cfg.LogPath, "refocus", entry); err != nil {
		stderrWarner.Warn().Err(err).Str("path", cfg.LogPath).Msg("refocus: audit log write failed")
	}
}

func appendAuditLine(logPath, message string, data any) error {
	if logPath == "" {
		return nil
	}
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	line := fmt.Sprintf("[%s] %s\n%s\n\n", time.Now().UTC().Format(time.RFC3339Nano), message, pretty)
	_, err = f.WriteString(line)
	return err
}
