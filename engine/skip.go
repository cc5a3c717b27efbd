package engine

// skipMarker is never zero-sized so that its address is unique.
type skipMarker struct{ _ byte }

var skipSentinel = &skipMarker{}

// Skip returns the marker that, passed as an argument, removes the
// conditional block consuming it from the built query.
//
// The marker is compared by identity. nil, 0, "" and any string spelling
// remain ordinary argument values.
func Skip() any {
	return skipSentinel
}

// IsSkip reports whether v is the marker returned by Skip.
func IsSkip(v any) bool {
	m, ok := v.(*skipMarker)
	return ok && m == skipSentinel
}

// elide reports whether a segment must be dropped after substitution.
func elide(seg Segment, consumed []any) bool {
	if seg.Kind != Conditional {
		return false
	}
	for _, v := range consumed {
		if IsSkip(v) {
			return true
		}
	}
	return false
}
