package engine

import "strings"

// Tag selects the formatter applied to a placeholder's argument.
type Tag byte

const (
	TagDefault    Tag = 0
	TagInt        Tag = 'd'
	TagFloat      Tag = 'f'
	TagArray      Tag = 'a'
	TagIdentifier Tag = '#'
)

const marker = '?'

func (t Tag) String() string {
	if t == TagDefault {
		return string(rune(marker))
	}
	return string([]byte{marker, byte(t)})
}

func tagOf(c byte) (Tag, bool) {
	switch t := Tag(c); t {
	case TagInt, TagFloat, TagArray, TagIdentifier:
		return t, true
	}
	return TagDefault, false
}

type placeholder struct {
	Tag      Tag
	Position int
}

func (p placeholder) fail(v any, err error) *FormatError {
	return &FormatError{Tag: p.Tag, Position: p.Position, Value: v, Err: err}
}

// matchPlaceholder finds the first placeholder in text at or after from and
// returns the byte range it covers. The marker always starts a placeholder;
// the following byte is taken as its tag only if it is a known tag.
func matchPlaceholder(text string, from int) (tag Tag, start, end int, ok bool) {
	i := strings.IndexByte(text[from:], marker)
	if i < 0 {
		return TagDefault, 0, 0, false
	}
	start = from + i
	end = start + 1
	if end < len(text) {
		if t, isTag := tagOf(text[end]); isTag {
			tag = t
			end++
		}
	}
	return tag, start, end, true
}

// argCursor hands out arguments strictly left to right, across segment
// boundaries.
type argCursor struct {
	args    []any
	next    int
	missing int
	policy  ExhaustPolicy
}

func (c *argCursor) take() (any, error) {
	if c.next >= len(c.args) {
		if c.policy == ExhaustError {
			return nil, ErrArgumentExhausted
		}
		c.missing++
		return nil, nil
	}
	v := c.args[c.next]
	c.next++
	return v, nil
}

func (c *argCursor) unused() int {
	return len(c.args) - c.next
}

// substitute replaces every placeholder in seg, appending each consumed
// argument to consumed. The skip marker is recorded but never rendered.
func (e *Engine) substitute(seg Segment, cur *argCursor, consumed []any) (string, []any, error) {
	text := seg.Text
	if strings.IndexByte(text, marker) < 0 {
		return text, consumed, nil
	}

	var sb strings.Builder
	sb.Grow(len(text))
	pos := 0
	for {
		tag, start, end, ok := matchPlaceholder(text, pos)
		if !ok {
			break
		}
		sb.WriteString(text[pos:start])
		pos = end
		ph := placeholder{Tag: tag, Position: seg.Offset + start}

		arg, err := cur.take()
		if err != nil {
			return "", consumed, ph.fail(nil, err)
		}
		consumed = append(consumed, arg)

		if IsSkip(arg) {
			if seg.Kind != Conditional {
				return "", consumed, ph.fail(arg, ErrSkipOutsideBlock)
			}
			continue
		}

		out, err := e.format(ph, arg)
		if err != nil {
			return "", consumed, err
		}
		sb.WriteString(out)
	}
	sb.WriteString(text[pos:])
	return sb.String(), consumed, nil
}
