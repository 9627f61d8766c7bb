package frontmatter

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wk-j/opencode-helix/internal/errors"
)

var (
	// ErrMissingFrontmatter is returned by MustParse when no header is found.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated is returned when the opening delimiter has no match.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")

	// ErrInvalidYAML marks headers that fail to decode.
	ErrInvalidYAML = errors.New("invalid frontmatter yaml")
)

// Parse decodes the optional header of r into matter and returns the body.
func Parse[T any](r io.Reader, matter *T) ([]byte, error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but requires the header.
func MustParse[T any](r io.Reader, matter *T) ([]byte, error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading frontmatter source")
	}

	header, body, found, err := split(content)
	if err != nil {
		return nil, err
	}
	if !found {
		if required {
			return nil, ErrMissingFrontmatter
		}
		return content, nil
	}

	if err := yaml.Unmarshal(header, matter); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding frontmatter"), ErrInvalidYAML)
	}
	return body, nil
}

// split walks the content line by line looking for the closing delimiter.
func split(content []byte) (header, body []byte, found bool, err error) {
	first, rest, ok := cutLine(content)
	if !ok || !isDelimiter(first) {
		return nil, nil, false, nil
	}

	start := len(content) - len(rest)
	for offset := start; offset < len(content); {
		line, next, _ := cutLine(content[offset:])
		if isDelimiter(line) {
			return content[start:offset], next, true, nil
		}
		offset = len(content) - len(next)
	}
	return nil, nil, false, ErrUnterminated
}

// cutLine returns the first line without its terminator and the remainder.
func cutLine(b []byte) (line, rest []byte, terminated bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return bytes.TrimSuffix(b[:i], []byte("\r")), b[i+1:], true
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t")) == "---"
}
