package refocus

// VFS is a snapshot of current disk content for every file a conversation's
// file-operation tool calls have touched: path -> (1-indexed line number ->
// line text).
type VFS map[string]map[int]string

// BuildVFS constructs a VFS from an ordered sequence of (tool call, result)
// pairs, re-reading files from disk as of now rather than replaying stored
// tool results. Reads merge into the existing per-path mapping; writes and
// edits replace it outright with a full re-read. Because pairs are
// processed in the order they appeared in the transcript, a later write
// wins over an earlier read of the same file, and vice versa — the freshest
// disk snapshot always wins.
func BuildVFS(pairs []ToolPair) VFS {
	vfs := VFS{}
	for _, pair := range pairs {
		op := Classify(pair.Call, pair.Result)
		if op == nil {
			continue
		}
		switch op.Kind {
		case OpRead:
			r := LineRange{}
			if op.Range != nil {
				r = *op.Range
			}
			fresh := ReadRange(op.Path, r)
			existing := vfs[op.Path]
			if existing == nil {
				existing = map[int]string{}
			}
			for line, text := range fresh {
				existing[line] = text
			}
			vfs[op.Path] = existing
		case OpWrite, OpEdit:
			vfs[op.Path] = ReadRange(op.Path, LineRange{})
		}
	}
	return vfs
}
