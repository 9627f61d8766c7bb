// Package editor turns the position and selection data supplied by the
// editor into prompt context.
//
// A [Context] is built once per invocation with [New] and never changes
// afterwards. [Expand] replaces the placeholder tokens of a prompt with text
// derived from that context:
//
//	@buffer     @file (path relative to the working directory)
//	@path       absolute path of the file
//	@this       @file L10-L20 for a selection, @file L42:C7 for a cursor
//	@selection  the @this form followed by a fenced block of the selected text
//	@diff       fenced output of git diff for the working directory
//
// Expansion is total: a recognized token whose data is missing fails the
// whole expansion with a [*MissingContextError] naming that token.
package editor
