// Package config loads showup's runtime settings.
//
// Settings come from, in increasing precedence: built-in defaults, a YAML
// config file, SHOWUP_* environment variables and command-line flags. The
// [Settings] struct is the only thing the rest of the program sees.
package config
