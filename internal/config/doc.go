// Package config assembles the lingvoro client configuration from
// environment variables, command-line flags, an optional JSON file, and
// built-in defaults. Sources are merged in that order; the earliest source
// providing a value wins. See [GetClientConfig].
package config
