// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file, and SCRYWORDS_-prefixed environment
// variables. It provides type-safe access to the settings needed by the
// server, the card store, review sessions, and the reminder sweep while
// keeping configuration details separate from business logic.
package config
