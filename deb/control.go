package deb

import (
	"fmt"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields is the ordered key→value map produced by ParseControl. Iteration
// order matches the order fields appeared in the source text.
type Fields = *orderedmap.OrderedMap[string, string]

// NewFields constructs an empty ordered field map, exported for callers that
// build a Package without going through ParseControl (e.g. tests).
func NewFields() Fields { return orderedmap.New[string, string]() }

// ParseErrorKind distinguishes the ways a control stanza can be malformed.
type ParseErrorKind int

const (
	ErrDuplicateKey ParseErrorKind = iota
	ErrNoValueForKey
	ErrIncompleteKey
	ErrMustEndInNewline
)

// ParseError reports a malformed control stanza.
type ParseError struct {
	Kind   ParseErrorKind
	Key    string
	Offset int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrDuplicateKey:
		return fmt.Sprintf("control: duplicate key: %q", e.Key)
	case ErrNoValueForKey:
		return fmt.Sprintf("control: key without value: %q", e.Key)
	case ErrIncompleteKey:
		return fmt.Sprintf("control: key not complete at offset %d", e.Offset)
	case ErrMustEndInNewline:
		return "control: file must end in newline"
	default:
		return "control: parse error"
	}
}

// parseState is one node of the control-file state machine: a field key
// starts at column zero, continuation lines (leading space/tab) extend the
// previous value, and '#' lines are comments.
type parseState int

const (
	stateKey parseState = iota
	stateSkipColon
	stateValue
	stateValueNewline
	stateSkipComment
	stateSkipCommentNewline
)

// ParseControl parses the text of exactly one control stanza into an ordered
// field map. It tolerates comment lines and multi-line (folded) values, and
// rejects duplicate keys, keys with no value, an unterminated key, and a
// file that doesn't end in a newline.
//
// The byte offsets driving state transitions advance by UTF-8 rune width;
// every structural character the state machine inspects (':', '\n', '#',
// space, tab) is ASCII, so slicing at those boundaries is always valid UTF-8.
func ParseControl(input string) (Fields, error) {
	out := orderedmap.New[string, string]()

	state := stateKey
	var key string
	keyStart, valueStart := 0, 0

	idx := 0
	for idx < len(input) {
		r, size := utf8.DecodeRuneInString(input[idx:])

		switch state {
		case stateKey:
			switch r {
			case ':':
				key = input[keyStart:idx]
				state = stateSkipColon
			case '#':
				// Only a '#' at the start of a line opens a comment; later
				// in a key it is an ordinary key character.
				if idx == keyStart {
					state = stateSkipComment
				}
			}

		case stateSkipColon:
			if r == '\n' {
				return nil, &ParseError{Kind: ErrIncompleteKey, Offset: idx}
			}
			valueStart = idx
			state = stateValue

		case stateValue:
			if r == '\n' {
				state = stateValueNewline
			}

		case stateValueNewline:
			if r == ' ' || r == '\t' {
				state = stateValue
				break
			}
			if r == '\n' {
				// An empty line extends the value; the field only ends at
				// the first non-blank, non-continuation line.
				break
			}
			if _, present := out.Get(key); present {
				return nil, &ParseError{Kind: ErrDuplicateKey, Key: key}
			}
			out.Set(key, input[valueStart:idx])
			if r == '#' {
				state = stateSkipComment
			} else {
				keyStart = idx
				state = stateKey
			}

		case stateSkipComment:
			if r == '\n' {
				state = stateSkipCommentNewline
			}

		case stateSkipCommentNewline:
			if r == '#' {
				state = stateSkipComment
			} else {
				keyStart = idx
				state = stateKey
			}
		}

		idx += size
	}

	switch state {
	case stateKey:
		return nil, &ParseError{Kind: ErrIncompleteKey, Offset: keyStart}
	case stateSkipColon:
		return nil, &ParseError{Kind: ErrNoValueForKey, Key: key}
	case stateValue:
		return nil, &ParseError{Kind: ErrMustEndInNewline}
	case stateValueNewline:
		if _, present := out.Get(key); present {
			return nil, &ParseError{Kind: ErrDuplicateKey, Key: key}
		}
		out.Set(key, input[valueStart:idx])
	}
	// stateSkipComment / stateSkipCommentNewline at EOF is legal: a file may
	// end right after a trailing comment's newline.
	return out, nil
}
