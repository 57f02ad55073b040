// Package config loads scame's configuration and resolves it against the
// environment and command-line flags.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--max-length, --quiet, --jobs, --no-color, etc.)
//  2. Environment variables (SCAME_MAX_LENGTH, SCAME_QUIET, SCAME_JOBS,
//     NO_COLOR, SCAME_DEBUG)
//  3. Configuration file (.scame.yaml or .scame.toml in the working
//     directory, then in $XDG_CONFIG_HOME/scame/)
//  4. Hardcoded defaults (options.Default)
//
// Resolve records which source supplied each setting so `--debug` can
// explain where a value came from.
//
// # File Format
//
// The YAML and TOML files share one schema, the field tags of
// options.Options:
//
//	max_line_length: 100
//	max_complexity: 10
//	scope:
//	  include: [src]
//	  exclude: ['src/vendor/']
//	javascript:
//	  linters: [gjs]
//	  args: [jsreporter.js, fulljslint.js]
//	tool_timeout: 10s
package config
