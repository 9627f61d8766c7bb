// Package paths resolves the files and directories opencode-helix reads and writes.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance:
//
//	| Purpose        | Location                                   |
//	|----------------|--------------------------------------------|
//	| Config file    | $XDG_CONFIG_HOME/opencode-helix/config.yaml |
//	| Prompt library | $XDG_CONFIG_HOME/opencode-helix/prompts/    |
//	| Debug log      | $XDG_STATE_HOME/opencode-helix/debug.log    |
//
// OPENCODE_HELIX_CONFIG_DIR overrides the config directory, which keeps tests
// and scripted setups away from the user's real configuration.
//
// It also provides [Canonical] for comparing project directories reported by
// different processes.
package paths
