package refocus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

//go:embed assets/preamble.md
var agentPreamble string

// Section markers. Their exact text is cosmetic; they only need to be
// stable so downstream tooling can grep for them.
const (
	environmentHeader  = "## Environment"
	fileStatesHeader   = "## Current File States"
	toolCallsHeader    = "## Previous Tool Calls and Results"
	endOfFileDivider   = "--- END OF FILE ---"
	endOfCallDivider   = "--- END OF TOOL CALL ---"
	untrackedPlaceholder = "_(file modified but content not tracked)_"
)

var (
	dateProbe = regexp.MustCompile(`Today's date is ([^.\n]+)`)
	osProbe   = regexp.MustCompile(`My operating system is: ([^\n]+)`)
	cwdProbe  = regexp.MustCompile(`I'm currently working in the directory: ([^\n]+)`)
)

// ComposeSystemPrompt builds the replacement system message: the fixed
// agent preamble, an Environment block extracted from the canned user
// context, a Current File States block rendered from the VFS, and a
// Previous Tool Calls and Results block rendered from the residual
// (non-file) tool pairs.
func ComposeSystemPrompt(cfg Config, dt DeconstructedTranscript) string {
	var b strings.Builder

	b.WriteString(agentPreamble)
	b.WriteString("\n\n")
	b.WriteString(renderEnvironment(dt.CannedUserContext))

	if len(dt.VFS) > 0 {
		b.WriteString("\n\n")
		b.WriteString(renderFileStates(dt.VFS))
	}

	if len(dt.ResidualToolPairs) > 0 {
		b.WriteString("\n\n")
		b.WriteString(renderToolCalls(cfg, dt.ResidualToolPairs))
	}

	return b.String()
}

func renderEnvironment(cannedUserContext string) string {
	date := normalizedToday()
	if m := dateProbe.FindStringSubmatch(cannedUserContext); m != nil {
		date = normalizeCapturedDate(strings.TrimSpace(m[1]))
	}
	osName := extractOrFallback(osProbe, cannedUserContext, func() string { return "unknown" })
	cwd := extractOrFallback(cwdProbe, cannedUserContext, fallbackCWD)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", environmentHeader)
	fmt.Fprintf(&b, "Today's date is %s.\n", date)
	fmt.Fprintf(&b, "My operating system is: %s\n", osName)
	fmt.Fprintf(&b, "I'm currently working in the directory: %s\n", cwd)
	return b.String()
}

func extractOrFallback(re *regexp.Regexp, haystack string, fallback func() string) string {
	if m := re.FindStringSubmatch(haystack); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallback()
}

func normalizedToday() string { return time.Now().UTC().Format("2006-01-02") }

func fallbackCWD() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return cwd
}

// normalizeCapturedDate reformats a free-form date string as YYYY-MM-DD
// when it can be parsed; on failure the original text is returned
// unchanged. This never changes whether the field is present, only its
// formatting.
func normalizeCapturedDate(raw string) string {
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func renderFileStates(vfs VFS) string {
	paths := make([]string, 0, len(vfs))
	for p := range vfs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString(fileStatesHeader)
	b.WriteString("\n")

	for i, path := range paths {
		fmt.Fprintf(&b, "\n### %s\n\n", path)
		lines := vfs[path]
		if len(lines) == 0 {
			b.WriteString(untrackedPlaceholder)
			b.WriteString("\n")
		} else {
			b.WriteString(renderLineRuns(lines))
		}
		if i < len(paths)-1 {
			fmt.Fprintf(&b, "\n%s\n", endOfFileDivider)
		}
	}
	return b.String()
}

// renderLineRuns groups a sparse line-number->text mapping into maximal
// consecutive runs and renders each as a "Line K:" or "Lines K-M:" heading
// followed by a fenced code block.
func renderLineRuns(lines map[int]string) string {
	nums := make([]int, 0, len(lines))
	for n := range lines {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var b strings.Builder
	i := 0
	for i < len(nums) {
		start := i
		for i+1 < len(nums) && nums[i+1] == nums[i]+1 {
			i++
		}
		runStart, runEnd := nums[start], nums[i]

		if runStart == runEnd {
			fmt.Fprintf(&b, "Line %d:\n", runStart)
		} else {
			fmt.Fprintf(&b, "Lines %d-%d:\n", runStart, runEnd)
		}

		content := make([]string, 0, runEnd-runStart+1)
		for n := runStart; n <= runEnd; n++ {
			content = append(content, lines[n])
		}
		b.WriteString("```\n")
		b.WriteString(strings.Join(content, "\n"))
		b.WriteString("\n```\n")

		i++
	}
	return b.String()
}

func renderToolCalls(cfg Config, pairs []ToolPair) string {
	var b strings.Builder
	b.WriteString(toolCallsHeader)
	b.WriteString("\n")

	for i, pair := range pairs {
		fmt.Fprintf(&b, "\n### %s\n\n", pair.Call.Function.Name)
		b.WriteString("Arguments\n```json\n")
		b.WriteString(prettyJSON(pair.Call.Function.Arguments))
		b.WriteString("\n```\n\n")
		b.WriteString("Result\n```\n")
		b.WriteString(TruncateSearchResult(cfg, pair.Call.Function.Name, pair.Result))
		b.WriteString("\n```\n")
		if i < len(pairs)-1 {
			fmt.Fprintf(&b, "\n%s\n", endOfCallDivider)
		}
	}
	return b.String()
}

func prettyJSON(raw string) string {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return raw
	}
	return string(b)
}
