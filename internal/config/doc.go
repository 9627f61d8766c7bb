// Package config provides configuration management for opencode-helix.
//
// # Configuration File
//
// The default configuration file is ~/.config/opencode-helix/config.yaml:
//
//	theme: hacker               # minimal, hacker, matrix, crt
//	probe_timeout: 1s           # per-candidate probe during discovery
//	discovery_timeout: 3s       # overall discovery deadline
//	request_timeout: 5s         # every other request to the server
//	max_probes: 8               # concurrent probes
//	server_command: opencode    # process name that identifies the server
//	server_password: ""         # HTTP basic auth, also OPENCODE_SERVER_PASSWORD
//	submit: true                # execute prompts after appending them
//	prompts_dir: ~/.config/opencode-helix/prompts
//	prompts:
//	  - name: security
//	    description: Security review
//	    prompt: "Look for security issues in @this"
//
// Every key can be overridden through the environment with the
// OPENCODE_HELIX_ prefix, for example OPENCODE_HELIX_THEME=crt.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// A missing file is not an error when no explicit path is given; defaults
// are returned instead. Loaded configurations are validated.
package config
