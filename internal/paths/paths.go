package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/wk-j/opencode-helix/internal/errors"
)

// AppName is the directory name used below each XDG base directory.
const AppName = "opencode-helix"

// ConfigDirEnv overrides ConfigDir when set.
const ConfigDirEnv = "OPENCODE_HELIX_CONFIG_DIR"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigDir returns the directory holding config.yaml and the prompt library.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigFile returns the default configuration file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// PromptsDir returns the default prompt library directory.
func PromptsDir() string {
	return filepath.Join(ConfigDir(), "prompts")
}

// StateDir returns the XDG state directory for the tool.
// On Linux: ~/.local/state/opencode-helix
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DebugLogPath returns the log file used by --debug.
func DebugLogPath() string {
	return filepath.Join(StateDir(), "debug.log")
}

// Canonical returns an absolute, symlink-free, cleaned form of path.
// When symlinks cannot be evaluated (for example the path no longer exists)
// the cleaned absolute path is returned instead.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
