package engine

import "strings"

// SegmentKind tells whether a segment is always emitted or may be elided.
type SegmentKind uint8

const (
	// Unconditional text is always part of the output.
	Unconditional SegmentKind = iota
	// Conditional text was wrapped in braces and disappears when one of the
	// arguments it consumes is the skip marker.
	Conditional
)

func (k SegmentKind) String() string {
	if k == Conditional {
		return "conditional"
	}
	return "unconditional"
}

// Segment is a contiguous span of a template with its braces removed.
// Offset is the byte position of Text within the original template.
type Segment struct {
	Kind   SegmentKind
	Text   string
	Offset int
}

// Split partitions a template into segments. Every '{' closes the current
// segment and opens a conditional one, every '}' closes the current segment
// and opens an unconditional one. Braces do not nest: a '{' inside a
// conditional segment simply starts another conditional segment.
//
// The result always has one more segment than the template has braces, so
// adjacent delimiters and delimiters at either end yield empty segments.
func Split(template string) []Segment {
	segments := make([]Segment, 0, 1+strings.Count(template, "{")+strings.Count(template, "}"))
	kind := Unconditional
	start := 0

	// Braces are ASCII, so byte offsets always fall on code point boundaries.
	for i := 0; i < len(template); i++ {
		switch template[i] {
		case '{', '}':
			segments = append(segments, Segment{Kind: kind, Text: template[start:i], Offset: start})
			if template[i] == '{' {
				kind = Conditional
			} else {
				kind = Unconditional
			}
			start = i + 1
		}
	}

	return append(segments, Segment{Kind: kind, Text: template[start:], Offset: start})
}
