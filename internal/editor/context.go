package editor

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Inputs is the raw editor data collected by the command line layer.
// Zero values mean "not supplied"; lines and columns are 1-based.
type Inputs struct {
	File           string
	Line           int
	Column         int
	SelectionStart int
	SelectionEnd   int
	SelectionText  string
	Language       string
	Cwd            string
}

// Context is the immutable editor context of one invocation.
type Context struct {
	file      string
	line      int
	column    int
	selStart  int
	selEnd    int
	selection string
	hasSel    bool
	language  string
	cwd       string
}

// New builds a Context from raw inputs. Selection bounds given in reverse
// order are swapped, and a single bound becomes a one-line range.
func New(in Inputs) Context {
	c := Context{
		file:      strings.TrimSpace(in.File),
		line:      positive(in.Line),
		column:    positive(in.Column),
		selStart:  positive(in.SelectionStart),
		selEnd:    positive(in.SelectionEnd),
		selection: in.SelectionText,
		hasSel:    in.SelectionText != "",
		language:  in.Language,
		cwd:       in.Cwd,
	}

	switch {
	case c.selStart == 0 && c.selEnd != 0:
		c.selStart = c.selEnd
	case c.selEnd == 0 && c.selStart != 0:
		c.selEnd = c.selStart
	case c.selStart > c.selEnd:
		c.selStart, c.selEnd = c.selEnd, c.selStart
	}

	if c.column != 0 && c.line == 0 {
		c.column = 0
	}

	return c
}

func positive(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// File returns the file path as supplied by the editor.
func (c Context) File() string { return c.file }

// Line returns the cursor line, or 0 if unknown.
func (c Context) Line() int { return c.line }

// Column returns the cursor column, or 0 if unknown.
func (c Context) Column() int { return c.column }

// Range returns the selected line range.
func (c Context) Range() (start, end int, ok bool) {
	return c.selStart, c.selEnd, c.selStart != 0
}

// Selection returns the captured selection text.
func (c Context) Selection() (string, bool) { return c.selection, c.hasSel }

// Language returns the editor's language tag for the file.
func (c Context) Language() string { return c.language }

// Cwd returns the working directory of the invocation.
func (c Context) Cwd() string { return c.cwd }

// HasFile reports whether a file was supplied.
func (c Context) HasFile() bool { return c.file != "" }

// RelativeFile returns the file path relative to the working directory when
// the file lies inside it, and the path as given otherwise.
func (c Context) RelativeFile() string {
	if c.file == "" || !filepath.IsAbs(c.file) || c.cwd == "" {
		return c.file
	}
	rel, err := filepath.Rel(c.cwd, c.file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return c.file
	}
	return rel
}

// AbsoluteFile resolves the file against the working directory.
func (c Context) AbsoluteFile() string {
	if c.file == "" {
		return ""
	}
	if filepath.IsAbs(c.file) {
		return filepath.Clean(c.file)
	}
	if c.cwd != "" {
		return filepath.Join(c.cwd, c.file)
	}
	if abs, err := filepath.Abs(c.file); err == nil {
		return abs
	}
	return c.file
}

// Location formats the file reference with its range or cursor, e.g.
// "@src/main.go L10-L20", "@src/main.go L42:C7" or "@src/main.go".
// It returns false when no file is known.
func (c Context) Location() (string, bool) {
	if c.file == "" {
		return "", false
	}

	var b strings.Builder
	b.WriteString("@")
	b.WriteString(c.RelativeFile())

	switch {
	case c.selStart != 0:
		b.WriteString(" L" + strconv.Itoa(c.selStart) + "-L" + strconv.Itoa(c.selEnd))
	case c.line != 0 && c.column != 0:
		b.WriteString(" L" + strconv.Itoa(c.line) + ":C" + strconv.Itoa(c.column))
	case c.line != 0:
		b.WriteString(" L" + strconv.Itoa(c.line))
	}
	return b.String(), true
}

// label names the fenced block of a selection: "file:10-20", "file:42" or "file".
func (c Context) label() string {
	name := c.RelativeFile()
	switch {
	case c.selStart != 0:
		return name + ":" + strconv.Itoa(c.selStart) + "-" + strconv.Itoa(c.selEnd)
	case c.line != 0:
		return name + ":" + strconv.Itoa(c.line)
	}
	return name
}
