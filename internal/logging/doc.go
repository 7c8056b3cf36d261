// Package logging builds the node's slog logger and scrubs secrets from it.
package logging
