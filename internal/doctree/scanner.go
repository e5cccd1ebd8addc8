package doctree

import "strings"

// HeadingRecord is one recognized heading: its level (1 = most senior),
// title, and the 0-based line it starts on.
type HeadingRecord struct {
	Level int
	Title string
	Line  int
}

// ScanOptions controls heading recognition.
type ScanOptions struct {
	// HeadingsInFences recognizes heading markers inside fenced code
	// blocks. By default fenced lines are body text, so a commented-out
	// "# example" in a code sample does not open a section.
	HeadingsInFences bool
}

// ScanResult is the line-oriented view of a document: its raw lines plus
// the ordered headings found in them. Lines between consecutive headings
// are body content of the most recent heading (or preamble if none yet).
type ScanResult struct {
	Lines   []string
	Records []HeadingRecord
}

// Scan splits a document into lines and records every ATX heading
// (1-6 '#' characters at column 0 followed by whitespace and a non-empty
// title). Anything else, including malformed marker shapes like "#no-space"
// or seven-plus hashes, is body text.
func Scan(text string, opts ScanOptions) ScanResult {
	lines := strings.Split(text, "\n")
	res := ScanResult{Lines: lines}

	inFence := false
	var fenceMarker string

	for i, line := range lines {
		if marker, ok := fenceLine(line); ok {
			if !inFence {
				inFence = true
				fenceMarker = marker
			} else if marker == fenceMarker {
				inFence = false
			}
			continue
		}
		if inFence && !opts.HeadingsInFences {
			continue
		}
		if level, title, ok := parseHeading(line); ok {
			res.Records = append(res.Records, HeadingRecord{
				Level: level,
				Title: title,
				Line:  i,
			})
		}
	}
	return res
}

// fenceLine reports whether a line opens or closes a code fence and which
// marker ("```" or "~~~") it uses. Up to three leading spaces are allowed,
// matching common markdown renderers.
func fenceLine(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", false
	}
	if strings.HasPrefix(trimmed, "```") {
		return "```", true
	}
	if strings.HasPrefix(trimmed, "~~~") {
		return "~~~", true
	}
	return "", false
}

// parseHeading recognizes the fixed heading vocabulary: "#" through
// "######" at the start of the line.
func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := line[level:]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return 0, "", false
	}
	title := strings.TrimSpace(rest)
	// Strip an optional closing hash run ("## Title ##").
	if stripped := strings.TrimRight(title, "#"); stripped != title && strings.HasSuffix(stripped, " ") {
		title = strings.TrimSpace(stripped)
	}
	if title == "" {
		return 0, "", false
	}
	return level, title, true
}
