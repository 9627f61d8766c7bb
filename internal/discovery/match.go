package discovery

import (
	"os"
	"strings"

	"github.com/wk-j/opencode-helix/internal/paths"
)

// MatchLength returns the length of dir when it equals cwd or is one of its
// ancestors, and -1 otherwise. Both paths are canonicalized first, and a
// prefix only counts at a path separator boundary.
func MatchLength(dir, cwd string) int {
	if dir == "" || cwd == "" {
		return -1
	}
	dir = canonical(dir)
	cwd = canonical(cwd)

	if dir == cwd {
		return len(dir)
	}

	prefix := dir
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	if strings.HasPrefix(cwd, prefix) {
		return len(dir)
	}
	return -1
}

func canonical(p string) string {
	if p == "" {
		return ""
	}
	return paths.Canonical(p)
}
