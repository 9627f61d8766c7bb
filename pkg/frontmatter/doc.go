// Package frontmatter splits Markdown files into a YAML header and a body.
//
// The header sits between two lines holding only "---" at the very start of
// the file:
//
//	---
//	name: security
//	description: Security review
//	---
//	Look for security issues in @this
//
// [Parse] treats the header as optional and returns the whole content as the
// body when it is absent. [MustParse] fails with [ErrMissingFrontmatter].
// LF and CRLF line endings are both accepted.
package frontmatter
