// Package frontmatter splits a `---` delimited metadata block from the head of
// a source file and parses it into an ordered, typed key/value mapping.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Delimiter opens and closes a front-matter block. It must be the very first
// line of the file.
const Delimiter = "---"

var (
	// ErrMissingClosingDelimiter indicates the document started with a
	// delimiter line but never closed the block.
	ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

	// ErrMalformedLine indicates a line inside the block without a "key: value" shape.
	ErrMalformedLine = errors.New("malformed front matter line")
)

// Options controls how forgiving Parse is.
type Options struct {
	// Strict turns malformed lines and unterminated blocks into errors.
	// Otherwise malformed lines are skipped and an unterminated block is
	// treated as ordinary body text.
	Strict bool
}

// Error is returned in strict mode for a malformed block.
type Error struct {
	Line int
	Text string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("front matter line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Split separates the front-matter block from the body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input. Line endings may be \n or \r\n.
func Split(content []byte) (block []byte, body []byte, had bool, err error) {
	first, rest := cutLine(content)
	if !isDelimiter(first) {
		return nil, content, false, nil
	}

	blockStart := len(content) - len(rest)
	for remaining := rest; len(remaining) > 0; {
		line, next := cutLine(remaining)
		if isDelimiter(line) {
			blockEnd := len(content) - len(remaining)
			bodyStart := len(content) - len(next)
			return content[blockStart:blockEnd], content[bodyStart:], true, nil
		}
		remaining = next
	}
	return nil, content, false, ErrMissingClosingDelimiter
}

// Parse extracts the metadata and returns it with the remaining body.
// Content without front matter yields an empty FrontMatter and the input
// unchanged.
func Parse(content []byte, opts Options) (*FrontMatter, []byte, error) {
	block, body, had, err := Split(content)
	if err != nil {
		if opts.Strict {
			return nil, nil, &Error{Line: 1, Text: Delimiter, Err: err}
		}
		return New(), content, nil
	}
	if !had {
		return New(), content, nil
	}

	fm, err := parseBlock(block, opts)
	if err != nil {
		return nil, nil, err
	}
	return fm, body, nil
}

func parseBlock(block []byte, opts Options) (*FrontMatter, error) {
	fm := New()
	lineNo := 1 // the opening delimiter
	listKey := ""

	for remaining := block; len(remaining) > 0; {
		var raw []byte
		raw, remaining = cutLine(remaining)
		lineNo++

		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// "- item" lines continue a key declared with an empty value.
		if item, ok := strings.CutPrefix(line, "- "); ok && listKey != "" {
			existing, _ := fm.Get(listKey)
			fm.set(listKey, ListValue(append(existing.list, ParseValue(strings.TrimSpace(item)))...))
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			if opts.Strict {
				return nil, &Error{Line: lineNo, Text: line, Err: ErrMalformedLine}
			}
			listKey = ""
			continue
		}

		value = strings.TrimSpace(value)
		if value == "" {
			listKey = key
		} else {
			listKey = ""
		}
		fm.set(key, ParseValue(value))
	}
	return fm, nil
}

// cutLine returns the first line without its terminator and the rest of the input.
func cutLine(b []byte) (line, rest []byte) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return bytes.TrimSuffix(b, []byte("\r")), nil
	}
	return bytes.TrimSuffix(b[:idx], []byte("\r")), b[idx+1:]
}

func isDelimiter(line []byte) bool {
	return strings.TrimRight(string(line), " \t") == Delimiter
}
