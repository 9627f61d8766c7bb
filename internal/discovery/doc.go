// Package discovery locates the opencode server that serves the current
// project.
//
// Candidate processes are read from the process table, probed in parallel
// over HTTP, and matched against the working directory: a server matches
// when its directory equals the working directory or is one of its
// ancestors. The deepest match wins; equally deep matches are separated by
// process start time, latest first.
package discovery
